package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// voicePicker selects one of the candidates of the current filter. While
// filtering, the candidates are narrowed down by a fuzzy match on their
// labels.
type voicePicker struct {
	candidates []voice.Voice
	matches    []int // Candidate indexes shown while filtering
	index      int   // Selected candidate

	filtering bool
	input     textinput.Model
}

func newVoicePicker() voicePicker {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "voice name"
	ti.CharLimit = 64
	return voicePicker{input: ti}
}

// setSelection replaces the candidates. The voice named keep stays
// selected when it is still a candidate; otherwise the selection default
// is used.
func (p *voicePicker) setSelection(sel voice.Selection, keep string) {
	p.candidates = sel.Candidates
	p.index = 0
	p.matches = nil

	if keep != "" && keep != "default" {
		for i, v := range p.candidates {
			if v.Name == keep {
				p.index = i
				return
			}
		}
	}
	if sel.Default != nil {
		for i, v := range p.candidates {
			if v.Name == sel.Default.Name {
				p.index = i
				return
			}
		}
	}
}

func (p voicePicker) empty() bool {
	return len(p.candidates) == 0
}

// selected returns the selected voice.
func (p voicePicker) selected() (voice.Voice, bool) {
	if p.empty() {
		return voice.Voice{}, false
	}
	return p.candidates[p.index], true
}

// name returns the selected voice name, empty when there is none.
func (p voicePicker) name() string {
	v, ok := p.selected()
	if !ok {
		return ""
	}
	return v.Name
}

// move selects the next or previous candidate, within the fuzzy matches
// while filtering.
func (p *voicePicker) move(delta int) {
	order := p.order()
	if len(order) == 0 {
		return
	}
	pos := 0
	for i, idx := range order {
		if idx == p.index {
			pos = i
			break
		}
	}
	n := len(order)
	p.index = order[((pos+delta)%n+n)%n]
}

func (p voicePicker) order() []int {
	if p.filtering && p.input.Value() != "" {
		return p.matches
	}
	order := make([]int, len(p.candidates))
	for i := range order {
		order[i] = i
	}
	return order
}

func (p *voicePicker) startFilter() tea.Cmd {
	p.filtering = true
	p.matches = nil
	p.input.SetValue("")
	return p.input.Focus()
}

// stopFilter leaves filter mode. When canceled the selection goes back to
// the voice selected before filtering.
func (p *voicePicker) stopFilter(previous string) {
	p.filtering = false
	p.matches = nil
	p.input.Blur()
	for i, v := range p.candidates {
		if v.Name == previous {
			p.index = i
			return
		}
	}
}

// updateFilter feeds msg to the filter input and selects the best match.
func (p *voicePicker) updateFilter(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.applyFilter()
	return cmd
}

func (p *voicePicker) applyFilter() {
	pattern := p.input.Value()
	if pattern == "" {
		p.matches = nil
		return
	}

	labels := make([]string, len(p.candidates))
	for i, v := range p.candidates {
		labels[i] = v.String()
	}

	p.matches = p.matches[:0]
	for _, m := range fuzzy.Find(pattern, labels) {
		p.matches = append(p.matches, m.Index)
	}
	if len(p.matches) > 0 {
		p.index = p.matches[0]
	}
}

// view renders the selected voice truncated to width cells.
func (p voicePicker) view(width int) string {
	v, ok := p.selected()
	if !ok {
		return ""
	}

	pos := fmt.Sprintf(" %d/%d", p.index+1, len(p.candidates))
	if p.filtering && p.input.Value() != "" {
		pos = fmt.Sprintf(" %d matches", len(p.matches))
	}

	label := runewidth.Truncate(v.String(), max(0, width-runewidth.StringWidth(pos)), ellipsis)
	return label + subtleStyle(pos)
}
