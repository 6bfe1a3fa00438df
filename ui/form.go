package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// field identifies a form control.
type field int

const (
	fieldText field = iota
	fieldLanguage
	fieldGender
	fieldVoice
	fieldRate
	fieldPitch
	fieldVolume
	fieldCount
)

func (f field) String() string {
	return [...]string{
		"Text",
		"Language",
		"Gender",
		"Voice",
		"Rate",
		"Pitch",
		"Volume",
	}[f]
}

// next returns the following field, wrapping around.
func (f field) next(delta int) field {
	n := (int(f) + delta) % int(fieldCount)
	if n < 0 {
		n += int(fieldCount)
	}
	return field(n)
}

// selector cycles through a fixed list of options.
type selector struct {
	values []string
	labels []string
	index  int
}

func newLanguageSelector(code string) selector {
	var s selector
	for _, p := range voice.Profiles() {
		s.values = append(s.values, p.Code)
		s.labels = append(s.labels, fmt.Sprintf("%s (%s)", p.DisplayName(), p.Code))
	}
	s.selectValue(code)
	return s
}

func newGenderSelector(g voice.GenderFilter) selector {
	var s selector
	for _, f := range voice.GenderFilters {
		s.values = append(s.values, f.String())
		s.labels = append(s.labels, f.String())
	}
	s.selectValue(g.String())
	return s
}

// move shifts the selection by delta, wrapping around. It reports whether
// the selection changed.
func (s *selector) move(delta int) bool {
	if len(s.values) < 2 {
		return false
	}
	n := len(s.values)
	s.index = ((s.index+delta)%n + n) % n
	return true
}

func (s *selector) selectValue(v string) bool {
	for i, val := range s.values {
		if val == v {
			s.index = i
			return true
		}
	}
	return false
}

func (s selector) value() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.values[s.index]
}

func (s selector) label() string {
	if len(s.labels) == 0 {
		return ""
	}
	return s.labels[s.index]
}

// slider is a numeric control limited to a provider range.
type slider struct {
	r     tts.Range
	value float64
	bar   progress.Model
}

func newSlider(r tts.Range, v float64) slider {
	return slider{
		r:     r,
		value: r.Clamp(v),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithWidth(24),
		),
	}
}

// step moves the value by n steps and snaps it onto the step grid.
func (s *slider) step(n int) {
	step := s.r.Step
	if step <= 0 {
		step = 0.1
	}
	v := s.value + float64(n)*step
	v = math.Round(v/step) * step
	s.value = s.r.Clamp(v)
}

// percent returns the value's position within the range.
func (s slider) percent() float64 {
	span := s.r.Max - s.r.Min
	if span <= 0 {
		return 0
	}
	return (s.value - s.r.Min) / span
}

func (s *slider) setWidth(w int) {
	s.bar.Width = max(8, w)
}

func (s slider) view() string {
	return fmt.Sprintf("%s %4.2f", s.bar.ViewAs(s.percent()), s.value)
}
