package ui

import (
	"math"
	"testing"

	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

func TestFieldNext(t *testing.T) {
	tests := []struct {
		from  field
		delta int
		want  field
	}{
		{fieldText, 1, fieldLanguage},
		{fieldVolume, 1, fieldText},
		{fieldText, -1, fieldVolume},
		{fieldVoice, -2, fieldLanguage},
	}

	for _, tt := range tests {
		if got := tt.from.next(tt.delta); got != tt.want {
			t.Errorf("%v.next(%d) = %v, want %v", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestSelector(t *testing.T) {
	s := newGenderSelector(voice.MaleOnly)
	if s.value() != "male" {
		t.Fatalf("value() = %q, want male", s.value())
	}

	s.move(1)
	if s.value() != "any" {
		t.Errorf("after wrap value() = %q, want any", s.value())
	}
	s.move(-1)
	if s.value() != "male" {
		t.Errorf("after back value() = %q, want male", s.value())
	}

	if s.selectValue("robot") {
		t.Error("selectValue() accepted an unknown value")
	}

	var empty selector
	if empty.move(1) || empty.value() != "" || empty.label() != "" {
		t.Error("empty selector should stay empty")
	}
}

func TestLanguageSelectorLabels(t *testing.T) {
	s := newLanguageSelector("ru")
	if s.value() != "ru" {
		t.Fatalf("value() = %q, want ru", s.value())
	}
	if s.label() != "русский (ru)" {
		t.Errorf("label() = %q", s.label())
	}

	s = newLanguageSelector("xx")
	if s.value() != "en" {
		t.Errorf("unknown code selects %q, want the first language", s.value())
	}
}

func TestSlider(t *testing.T) {
	r := tts.Range{Min: 0, Max: 2, Step: 0.1, Default: 1}

	tests := []struct {
		name  string
		start float64
		steps int
		want  float64
	}{
		{"up", 1, 3, 1.3},
		{"down", 1, -4, 0.6},
		{"clamped high", 1.95, 5, 2},
		{"clamped low", 0.05, -5, 0},
		{"start clamped", 5, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSlider(r, tt.start)
			s.step(tt.steps)
			if math.Abs(s.value-tt.want) > 1e-9 {
				t.Errorf("value = %v, want %v", s.value, tt.want)
			}
		})
	}
}

func TestSliderPercent(t *testing.T) {
	s := newSlider(tts.Range{Min: 0.5, Max: 1.5, Step: 0.1}, 1)
	if got := s.percent(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("percent() = %v, want 0.5", got)
	}

	flat := newSlider(tts.Range{Min: 1, Max: 1}, 1)
	if flat.percent() != 0 {
		t.Errorf("percent() = %v, want 0 for an empty range", flat.percent())
	}
}

func TestVoicePickerKeepsSelection(t *testing.T) {
	zira := voice.Voice{Name: "Zira", LanguageTag: "en-US"}
	david := voice.Voice{Name: "David", LanguageTag: "en-US"}
	mark := voice.Voice{Name: "Mark", LanguageTag: "en-US"}

	p := newVoicePicker()
	p.setSelection(voice.Selection{Candidates: []voice.Voice{zira, david, mark}, Default: &zira}, "")
	if p.name() != "Zira" {
		t.Fatalf("name() = %q, want the default", p.name())
	}

	p.setSelection(voice.Selection{Candidates: []voice.Voice{zira, david, mark}, Default: &zira}, "Mark")
	if p.name() != "Mark" {
		t.Errorf("name() = %q, want the kept voice", p.name())
	}

	p.setSelection(voice.Selection{Candidates: []voice.Voice{david}, Default: &david}, "Mark")
	if p.name() != "David" {
		t.Errorf("name() = %q, want the default when the kept voice is gone", p.name())
	}

	p.move(1)
	if p.name() != "David" {
		t.Errorf("move() on one candidate changed to %q", p.name())
	}

	p.setSelection(voice.Selection{}, "David")
	if !p.empty() || p.name() != "" {
		t.Error("empty selection should clear the picker")
	}
}
