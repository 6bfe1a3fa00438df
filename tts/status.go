package tts

import "fmt"

// StatusKind classifies the user-visible status line.
type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusPending
	StatusPlaying
	StatusResumed
	StatusPaused
	StatusStopped
	StatusFinished
	StatusInputError
	StatusProviderError
	StatusNoVoices
	StatusUnsupported
)

// String returns the string representation of the status kind.
func (k StatusKind) String() string {
	switch k {
	case StatusReady:
		return "ready"
	case StatusPending:
		return "pending"
	case StatusPlaying:
		return "playing"
	case StatusResumed:
		return "resumed"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	case StatusFinished:
		return "finished"
	case StatusInputError:
		return "input-error"
	case StatusProviderError:
		return "provider-error"
	case StatusNoVoices:
		return "no-voices"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// IsError reports whether the status reports a failure.
func (k StatusKind) IsError() bool {
	return k == StatusInputError || k == StatusProviderError || k == StatusUnsupported
}

// Status is the text shown to the user.
type Status struct {
	Kind    StatusKind
	Message string
	Hint    bool // Show the environment compatibility hint
}

func newStatus(kind StatusKind) Status {
	return Status{Kind: kind, Message: statusMessages[kind]}
}

var statusMessages = map[StatusKind]string{
	StatusReady:       "Ready",
	StatusPending:     "Synthesizing…",
	StatusPlaying:     "Playing…",
	StatusResumed:     "Resumed",
	StatusPaused:      "Paused",
	StatusStopped:     "Stopped",
	StatusFinished:    "Finished",
	StatusInputError:  ErrEmptyInput.Error(),
	StatusNoVoices:    "No voices available",
	StatusUnsupported: "Your environment does not support speech synthesis",
}

func providerErrorStatus(code string) Status {
	return Status{
		Kind:    StatusProviderError,
		Message: fmt.Sprintf("Playback error: %s", code),
		Hint:    true,
	}
}

// UnsupportedStatus is the terminal status for a missing provider.
func UnsupportedStatus() Status {
	s := newStatus(StatusUnsupported)
	s.Hint = true
	return s
}

// NoVoicesStatus is shown while the voice list is empty.
func NoVoicesStatus() Status {
	return newStatus(StatusNoVoices)
}
