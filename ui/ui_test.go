package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/engines/mock"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

func newTestModel(t *testing.T, mc mock.Config, text string) (model, *mock.Engine) {
	t.Helper()
	return newTestModelWithConfig(t, mc, tts.DefaultConfig(), text)
}

func newTestModelWithConfig(t *testing.T, mc mock.Config, cfg tts.Config, text string) (model, *mock.Engine) {
	t.Helper()

	mc.Manual = true
	p := mock.New(mc)
	t.Cleanup(func() { _ = p.Close() })

	cfg.Engine = tts.EngineMock

	m := newModel(Config{Text: text, TextHeight: 4, Engine: "mock"}, cfg, p, nil)
	t.Cleanup(m.cancel)
	return m, p
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(model)
	}
	return m
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func speakRequests(p *mock.Engine) []tts.Request {
	var out []tts.Request
	for _, c := range p.Calls() {
		if c.Op == "speak" && c.Request.Text != "" {
			out = append(out, c.Request)
		}
	}
	return out
}

func TestInitialForm(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	profile, _ := voice.LookupProfile("en")
	if got := m.text.Value(); got != profile.SampleText {
		t.Errorf("text = %q, want the English sample text", got)
	}
	if m.language.value() != "en" || m.gender.value() != "any" {
		t.Errorf("language/gender = %s/%s, want en/any", m.language.value(), m.gender.value())
	}
	if got := m.voices.name(); got != profile.DefaultFemale {
		t.Errorf("voice = %q, want %q", got, profile.DefaultFemale)
	}
	if m.loadingVoices {
		t.Error("voices should be loaded")
	}
	if m.status().Kind != tts.StatusReady {
		t.Errorf("status = %v, want ready", m.status().Kind)
	}
}

func TestEmptyTextShowsInputError(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "")
	m.text.SetValue("")

	m = press(t, m, "ctrl+p")

	if got := m.status().Kind; got != tts.StatusInputError {
		t.Errorf("status = %v, want input-error", got)
	}
	if m.controller.State() != tts.StateIdle {
		t.Errorf("state = %v, want idle", m.controller.State())
	}
	if n := len(speakRequests(p)); n != 0 {
		t.Errorf("%d utterances reached the provider, want 0", n)
	}
}

func TestActivationOnFirstKey(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "hello")

	m = press(t, m, "tab", "tab")

	calls := p.Calls()
	if len(calls) != 2 || calls[0].Op != "speak" || calls[1].Op != "cancel" {
		t.Fatalf("calls = %+v, want one probe speak and cancel", calls)
	}
	if calls[0].Request.Text != "" || calls[0].Request.Volume != 0 {
		t.Errorf("probe = %+v, want empty silent request", calls[0].Request)
	}
	if m.status().Kind != tts.StatusReady {
		t.Errorf("status = %v, want ready", m.status().Kind)
	}
}

func TestPlaybackCycle(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "Hello there")

	m = press(t, m, "ctrl+p")
	if m.controller.State() != tts.StateSpeaking || m.status().Kind != tts.StatusPending {
		t.Fatalf("after play: state=%v status=%v", m.controller.State(), m.status().Kind)
	}
	if !m.spinning() {
		t.Error("spinner should run while pending")
	}

	reqs := speakRequests(p)
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Text != "Hello there" || req.Voice == nil || req.Voice.Name != "Microsoft Zira Desktop - English (United States)" {
		t.Errorf("request = %+v", req)
	}

	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventStart, ID: req.ID}})
	if m.status().Kind != tts.StatusPlaying {
		t.Errorf("after start: status = %v, want playing", m.status().Kind)
	}

	m = press(t, m, "ctrl+k")
	if m.controller.State() != tts.StatePaused {
		t.Errorf("after pause: state = %v", m.controller.State())
	}

	m = press(t, m, "ctrl+p")
	if m.controller.State() != tts.StateSpeaking || m.status().Kind != tts.StatusResumed {
		t.Errorf("after resume: state=%v status=%v", m.controller.State(), m.status().Kind)
	}
	if p.CallCount("resume") != 1 {
		t.Errorf("resume calls = %d, want 1", p.CallCount("resume"))
	}

	m = press(t, m, "ctrl+x")
	if m.controller.State() != tts.StateIdle || m.status().Kind != tts.StatusStopped {
		t.Errorf("after stop: state=%v status=%v", m.controller.State(), m.status().Kind)
	}

	// A late end for the stopped request changes nothing.
	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventEnd, ID: req.ID}})
	if m.status().Kind != tts.StatusStopped {
		t.Errorf("after stale end: status = %v, want stopped", m.status().Kind)
	}
}

func TestSpaceTogglesOutsideText(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "Hello")

	m = press(t, m, "tab", " ")
	if m.controller.State() != tts.StateSpeaking {
		t.Fatalf("state = %v, want speaking", m.controller.State())
	}
	m = press(t, m, " ")
	if m.controller.State() != tts.StatePaused {
		t.Errorf("state = %v, want paused", m.controller.State())
	}
	m = press(t, m, "s")
	if m.controller.State() != tts.StateIdle {
		t.Errorf("state = %v, want idle", m.controller.State())
	}
	if n := len(speakRequests(p)); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestProviderErrorShowsHint(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "Hello")

	m = press(t, m, "ctrl+p")
	req := speakRequests(p)[0]
	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventError, ID: req.ID, Code: "network"}})

	st := m.status()
	if st.Kind != tts.StatusProviderError || !strings.Contains(st.Message, "network") {
		t.Errorf("status = %+v, want provider error with code", st)
	}
	if !strings.Contains(m.View(), compatibilityHint) {
		t.Error("view should show the compatibility hint")
	}
	if m.controller.State() != tts.StateIdle {
		t.Errorf("state = %v, want idle", m.controller.State())
	}
}

func TestLanguageChange(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	m = press(t, m, "tab", "right")

	zh, _ := voice.LookupProfile("zh")
	if m.language.value() != "zh" {
		t.Fatalf("language = %q, want zh", m.language.value())
	}
	if m.text.Value() != zh.SampleText {
		t.Errorf("text = %q, want the Chinese sample text", m.text.Value())
	}
	if m.voices.name() != zh.DefaultFemale {
		t.Errorf("voice = %q, want %q", m.voices.name(), zh.DefaultFemale)
	}
}

func TestLanguageChangeKeepsUserText(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "my own words")

	m = press(t, m, "tab", "right")
	if m.text.Value() != "my own words" {
		t.Errorf("text = %q, want it unchanged", m.text.Value())
	}
}

func TestGenderChange(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	m = press(t, m, "tab", "tab", "right")
	if m.gender.value() != "female" || m.voices.name() != "Microsoft Zira Desktop - English (United States)" {
		t.Errorf("female: voice = %q", m.voices.name())
	}

	m = press(t, m, "right")
	if m.gender.value() != "male" || m.voices.name() != "Microsoft David Desktop - English (United States)" {
		t.Errorf("male: voice = %q", m.voices.name())
	}
}

func TestNoVoicesForGender(t *testing.T) {
	vs := []voice.Voice{{Name: "Google US English", LanguageTag: "en-US"}}
	m, _ := newTestModel(t, mock.Config{Voices: vs}, "")

	if m.voices.name() != "Google US English" {
		t.Fatalf("voice = %q", m.voices.name())
	}

	m = press(t, m, "tab", "tab", "right")
	if !m.voices.empty() {
		t.Errorf("candidates = %v, want none", m.voices.candidates)
	}
	if m.status().Kind != tts.StatusNoVoices {
		t.Errorf("status = %v, want no-voices", m.status().Kind)
	}
	if got := m.settings().Voice; got != tts.DefaultVoice {
		t.Errorf("settings voice = %q, want %q", got, tts.DefaultVoice)
	}
}

func TestVoicesArriveLater(t *testing.T) {
	m, p := newTestModel(t, mock.Config{VoiceDelay: time.Hour}, "")

	if !m.loadingVoices || !m.voices.empty() {
		t.Fatal("voices should still be loading")
	}
	if m.Init() == nil {
		t.Fatal("Init() should start loading")
	}

	p.SetVoices(mock.DefaultVoices)
	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventVoicesChanged}})

	if m.loadingVoices {
		t.Error("loading should be finished")
	}
	if m.voices.name() != "Microsoft Zira Desktop - English (United States)" {
		t.Errorf("voice = %q", m.voices.name())
	}
}

func TestVoiceFilter(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	m = press(t, m, "tab", "tab", "tab", "/")
	if !m.voices.filtering {
		t.Fatal("filter should be open")
	}

	m = press(t, m, "d", "a", "v")
	if m.voices.name() != "Microsoft David Desktop - English (United States)" {
		t.Errorf("best match = %q, want David", m.voices.name())
	}

	m = press(t, m, "enter")
	if m.voices.filtering {
		t.Error("filter should be closed")
	}
	if m.voices.name() != "Microsoft David Desktop - English (United States)" {
		t.Errorf("voice = %q, want David", m.voices.name())
	}
}

func TestVoiceFilterCancel(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	m = press(t, m, "tab", "tab", "tab", "/", "d", "a", "v", "esc")
	if m.voices.filtering {
		t.Error("filter should be closed")
	}
	if m.voices.name() != "Microsoft Zira Desktop - English (United States)" {
		t.Errorf("voice = %q, want the previous selection", m.voices.name())
	}
}

const (
	zira  = "Microsoft Zira Desktop - English (United States)"
	david = "Microsoft David Desktop - English (United States)"
)

func TestConfiguredVoice(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Voice = david

	m, _ := newTestModelWithConfig(t, mock.Config{}, cfg, "")
	if m.voices.name() != david {
		t.Errorf("voice = %q, want the configured David", m.voices.name())
	}
}

func TestConfiguredVoiceArrivesLater(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Voice = david

	m, p := newTestModelWithConfig(t, mock.Config{VoiceDelay: time.Hour}, cfg, "")
	p.SetVoices(mock.DefaultVoices)
	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventVoicesChanged}})

	if m.voices.name() != david {
		t.Errorf("voice = %q, want the configured David", m.voices.name())
	}
}

func TestUnmatchedConfiguredVoiceKeepsUserChoice(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Voice = "alena"

	m, _ := newTestModelWithConfig(t, mock.Config{}, cfg, "")
	m = press(t, m, "tab", "tab", "tab", "right")
	if m.voices.name() != david {
		t.Fatalf("voice = %q, want David after moving right", m.voices.name())
	}

	m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventVoicesChanged}})
	if m.voices.name() != david {
		t.Errorf("voice after rescan = %q, want David", m.voices.name())
	}
}

func TestVoicesChangeWhileFiltering(t *testing.T) {
	tests := []struct {
		name   string
		voices []voice.Voice
		want   string
	}{
		{"previous voice kept", mock.DefaultVoices, zira},
		{"previous voice gone", mock.DefaultVoices[1:], david},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, p := newTestModel(t, mock.Config{}, "")
			m = press(t, m, "tab", "tab", "tab", "/", "d", "a", "v")

			p.SetVoices(tt.voices)
			m = send(t, m, tts.EventMsg{Event: tts.Event{Kind: tts.EventVoicesChanged}})

			if m.voices.filtering {
				t.Error("filter should be closed")
			}
			if m.voices.name() != tt.want {
				t.Errorf("voice = %q, want %q", m.voices.name(), tt.want)
			}
		})
	}
}

func TestSlidersFeedRequest(t *testing.T) {
	m, p := newTestModel(t, mock.Config{}, "Hello")

	m = press(t, m, "tab", "tab", "tab", "tab", "right", "right")
	m = press(t, m, "tab", "tab", "left", "left", "left")
	m = press(t, m, "ctrl+p")

	req := speakRequests(p)[0]
	if math.Abs(req.Rate-1.2) > 1e-9 {
		t.Errorf("rate = %v, want 1.2", req.Rate)
	}
	if math.Abs(req.Volume-0.7) > 1e-9 {
		t.Errorf("volume = %v, want 0.7", req.Volume)
	}
	if req.Pitch != 1 {
		t.Errorf("pitch = %v, want 1", req.Pitch)
	}
}

func TestClipboardPaste(t *testing.T) {
	m, _ := newTestModel(t, mock.Config{}, "")

	next, cmd := m.Update(clipboardMsg{text: "pasted text"})
	m = next.(model)
	if m.text.Value() != "pasted text" {
		t.Errorf("text = %q", m.text.Value())
	}
	if m.flash != "Pasted 11 characters" || cmd == nil {
		t.Errorf("flash = %q", m.flash)
	}

	m = send(t, m, flashTimeoutMsg(m.flashID))
	if m.flash != "" {
		t.Errorf("flash = %q, want cleared", m.flash)
	}

	m = send(t, m, clipboardMsg{err: errors.New("no clipboard")})
	if m.flash != "Clipboard unavailable" || m.text.Value() != "pasted text" {
		t.Errorf("flash = %q text = %q", m.flash, m.text.Value())
	}
}

func TestUnsupported(t *testing.T) {
	cfg := tts.DefaultConfig()
	initErr := fmt.Errorf("%w: no audio device", tts.ErrUnsupported)
	m := newModel(Config{Engine: "piper"}, cfg, nil, initErr)

	if m.Init() != nil {
		t.Error("Init() should do nothing")
	}
	if m.status().Kind != tts.StatusUnsupported || !m.status().Hint {
		t.Errorf("status = %+v", m.status())
	}
	if m.keys.Play.Enabled() || m.keys.Filter.Enabled() {
		t.Error("controls should be disabled")
	}

	m = press(t, m, "ctrl+p", "tab", "right")
	if m.focus != fieldText || m.language.value() != "en" {
		t.Error("controls should not react")
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.hint == "" {
		t.Error("unsupported explanation should be rendered")
	}

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
