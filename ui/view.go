package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.titleView() + "\n\n")

	if m.unsupported {
		b.WriteString(m.hint)
	}
	b.WriteString(m.textView() + "\n\n")
	b.WriteString(m.formView() + "\n")

	st := m.status()
	spin := ""
	if m.spinning() {
		spin = m.spinner.View()
	}
	b.WriteString(statusLine(st, spin, m.flash, m.width) + "\n")
	if st.Hint && !m.unsupported {
		b.WriteString(subtleStyle("  "+compatibilityHint) + "\n")
	}

	b.WriteString("\n" + indent(m.help.View(m.keys), 1))
	return b.String()
}

func (m model) titleView() string {
	logo := logoStyle(" voicedeck ")
	engine := m.cfg.Engine
	if engine == "" && m.provider != nil {
		engine = m.provider.Name()
	}
	note := engineStyle(" " + engine + " ")
	padding := max(0, m.width-ansi.PrintableRuneWidth(logo)-ansi.PrintableRuneWidth(note))
	return logo + note + engineStyle(strings.Repeat(" ", padding))
}

func (m model) textView() string {
	label := m.label(fieldText)
	count := fmt.Sprintf("%s characters", humanize.Comma(int64(utf8.RuneCountInString(m.text.Value()))))
	header := label + " " + subtleStyle(count)
	body := m.text.View()
	if m.unsupported {
		body = dimmedStyle(m.text.Value())
	}
	return header + "\n" + indent(body, 1)
}

func (m model) formView() string {
	rows := []string{
		m.row(fieldLanguage, m.language.label()),
		m.row(fieldGender, m.gender.label()),
		m.row(fieldVoice, m.voiceView()),
		m.row(fieldRate, m.rate.view()),
		m.row(fieldPitch, m.pitchView()),
		m.row(fieldVolume, m.volume.view()),
	}
	return strings.Join(rows, "\n")
}

func (m model) voiceView() string {
	width := max(10, m.width-labelWidth-4)

	switch {
	case m.voices.filtering:
		return m.voices.input.View() + "  " + m.voices.view(width/2)
	case m.loadingVoices:
		return m.spinner.View() + subtleStyle(" loading voices…")
	case m.voices.empty():
		return errorStyle(tts.NoVoicesStatus().Message)
	}
	return m.voices.view(width)
}

func (m model) pitchView() string {
	if !m.caps.SupportsPitch {
		return dimmedStyle(m.pitch.view() + " (not supported by this engine)")
	}
	return m.pitch.view()
}

func (m model) row(f field, value string) string {
	cursor := "  "
	if m.focus == f && !m.unsupported {
		cursor = lipgloss.NewStyle().Foreground(fuchsia).Render("▸ ")
	}
	if m.unsupported {
		value = dimmedStyle(value)
	} else {
		value = valueStyle(value)
	}
	return cursor + m.label(f) + value
}

func (m model) label(f field) string {
	if m.focus == f && !m.unsupported {
		return focusedLabelStyle(f.String())
	}
	return labelStyle(f.String())
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
