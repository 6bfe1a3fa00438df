package tts

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// Messages for Bubble Tea communication between TTS and UI.

// EventMsg carries a provider event into the Update loop.
type EventMsg struct {
	Event Event
}

// EventsClosedMsg indicates the provider closed its event stream.
type EventsClosedMsg struct{}

// VoicesLoadedMsg reports the outcome of the initial voice list load.
type VoicesLoadedMsg struct {
	Voices []voice.Voice
	Err    error
}

// WaitForEventCmd waits for the next provider event. The UI issues it again
// after every EventMsg to keep listening.
func WaitForEventCmd(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// LoadVoicesCmd polls the catalog until voices are available or ctx ends.
func LoadVoicesCmd(ctx context.Context, catalog *Catalog) tea.Cmd {
	return func() tea.Msg {
		vs, err := catalog.Load(ctx)
		return VoicesLoadedMsg{Voices: vs, Err: err}
	}
}
