package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the control panel bindings. Bindings with a ctrl or
// function key work everywhere; the plain letter ones only outside the
// text field.
type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Play   key.Binding
	Pause  key.Binding
	Stop   key.Binding
	Toggle key.Binding
	Halt   key.Binding
	Filter key.Binding
	Paste  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Exit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "decrease"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "increase"),
		),
		Play: key.NewBinding(
			key.WithKeys("ctrl+p", "f5"),
			key.WithHelp("ctrl+p", "play"),
		),
		Pause: key.NewBinding(
			key.WithKeys("ctrl+k", "f6"),
			key.WithHelp("ctrl+k", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+x", "f7"),
			key.WithHelp("ctrl+x", "stop"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Halt: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find voice"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "paste clipboard"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Exit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Pause, k.Stop, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Pause, k.Stop, k.Toggle, k.Halt},
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Filter, k.Paste, k.Help, k.Exit, k.Quit},
	}
}

// disableControls leaves only help and quit active.
func (k *keyMap) disableControls() {
	for _, b := range []*key.Binding{
		&k.Next, &k.Prev, &k.Left, &k.Right,
		&k.Play, &k.Pause, &k.Stop, &k.Toggle, &k.Halt,
		&k.Filter, &k.Paste,
	} {
		b.SetEnabled(false)
	}
}
