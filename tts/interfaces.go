package tts

import (
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// DefaultVoice is the voice selection that defers to the language profile.
const DefaultVoice = "default"

// Provider is the speech capability the controller drives. Speak, Pause,
// Resume and Cancel are fire-and-forget; their outcome is reported on
// Events.
type Provider interface {
	// Name returns the provider name, e.g. "piper".
	Name() string

	// Voices returns the voices known right now. The list may be empty
	// until the provider finished loading it.
	Voices() []voice.Voice

	// Speak submits one utterance. It is followed by EventStart and then
	// exactly one of EventEnd or EventError, unless it is canceled.
	Speak(req Request) error

	// Pause temporarily stops playback.
	Pause() error

	// Resume continues paused playback.
	Resume() error

	// Cancel drops the current utterance.
	Cancel() error

	// Events returns the channel of lifecycle and voice list events.
	Events() <-chan Event

	// Capabilities describes the parameter ranges the provider accepts.
	Capabilities() Capabilities

	// Close releases the provider's resources.
	Close() error
}

// Request is the parameter bundle for one utterance. A new one is built
// for every play action.
type Request struct {
	ID          string       // Unique per request, echoed in events
	Text        string       // Text to speak
	Voice       *voice.Voice // Explicit voice, nil for the provider default
	LanguageTag string       // Language to speak in
	Rate        float64      // Speech rate multiplier
	Pitch       float64      // Pitch multiplier
	Volume      float64      // Volume level
}

// Settings are the current form values a request is built from.
type Settings struct {
	Text     string
	Language string             // Language code, e.g. "en"
	Gender   voice.GenderFilter // Active gender filter
	Voice    string             // Voice name or DefaultVoice
	Rate     float64
	Pitch    float64
	Volume   float64
}

// EventKind identifies a provider event.
type EventKind int

const (
	// EventStart means audio output for a request began.
	EventStart EventKind = iota
	// EventEnd means a request finished playing.
	EventEnd
	// EventError means a request failed.
	EventError
	// EventVoicesChanged means Voices may return a different list.
	EventVoicesChanged
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	case EventVoicesChanged:
		return "voiceschanged"
	default:
		return "unknown"
	}
}

// Event is emitted by a provider.
type Event struct {
	Kind EventKind
	ID   string // Request ID, empty for EventVoicesChanged
	Code string // Provider error code for EventError
	Err  error  // Underlying error for EventError
}

// Range is an inclusive parameter range with a slider step.
type Range struct {
	Min, Max, Step, Default float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Capabilities describes what a provider accepts.
type Capabilities struct {
	Rate            Range
	Pitch           Range
	Volume          Range
	SupportsPitch   bool // Pitch has an audible effect
	RequiresNetwork bool // Needs internet connection
}

// DefaultCapabilities returns the ranges browsers use for speech synthesis.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Rate:   Range{Min: 0.1, Max: 10, Step: 0.1, Default: 1},
		Pitch:  Range{Min: 0, Max: 2, Step: 0.1, Default: 1},
		Volume: Range{Min: 0, Max: 1, Step: 0.1, Default: 1},
	}
}
