package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const compatibilityHint = "Check that the engine is installed and that an audio output device is available."

const unsupportedMarkdown = `# Speech synthesis is not available

voicedeck could not start the **%s** engine:

> %s

All controls are disabled. Install the engine, or pick another one with
` + "`--engine`" + `. Run ` + "`voicedeck --engine mock`" + ` to try the control panel
without audio.
`

// statusIcon returns the glyph shown before a status message.
func statusIcon(k tts.StatusKind) string {
	switch k {
	case tts.StatusPlaying, tts.StatusResumed:
		return "▶"
	case tts.StatusPaused:
		return "⏸"
	case tts.StatusStopped:
		return "⏹"
	case tts.StatusFinished:
		return "✓"
	case tts.StatusInputError, tts.StatusProviderError, tts.StatusUnsupported:
		return "✗"
	default:
		return "•"
	}
}

// statusLine renders the status bar. spin is the spinner frame shown while
// a request is pending; flash overrides the status message.
func statusLine(st tts.Status, spin, flash string, width int) string {
	icon := statusIcon(st.Kind)
	if spin != "" {
		icon = spin
	}

	msg := st.Message
	if flash != "" {
		msg = flash
	}

	note := fmt.Sprintf(" %s %s ", icon, msg)
	if width > 0 {
		note = truncate.StringWithTail(note, uint(width), ellipsis) //nolint:gosec
	}
	padding := ""
	if width > 0 {
		padding = strings.Repeat(" ", max(0, width-ansi.PrintableRuneWidth(note)))
	}

	switch {
	case flash != "":
		return statusBarMessageStyle(note + padding)
	case st.Kind.IsError():
		return statusBarErrorStyle(note + padding)
	case st.Kind == tts.StatusPlaying || st.Kind == tts.StatusResumed:
		return statusBarNoteStyle(playingStyle(note) + padding)
	default:
		return statusBarNoteStyle(note + padding)
	}
}

// glamourStyle resolves "auto" to the dark or light style.
func glamourStyle(style string) glamour.TermRendererOption {
	if style == "" || style == styles.AutoStyle {
		if termenv.HasDarkBackground() {
			return glamour.WithStandardStyle(styles.DarkStyle)
		}
		return glamour.WithStandardStyle(styles.LightStyle)
	}
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylePath(style)
}

// renderUnsupported renders the terminal explanation shown when no provider
// could be created.
func renderUnsupported(style, engine string, cause error, width int) string {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	md := fmt.Sprintf(unsupportedMarkdown, engine, reason)

	if width <= 0 || width > 100 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamourStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
