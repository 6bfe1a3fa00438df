// Package ui provides the control panel of voicedeck.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	"github.com/dustin/go-humanize"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show messages like "pasted!"
	labelWidth           = 12
)

type (
	clipboardMsg struct {
		text string
		err  error
	}
	flashTimeoutMsg int
)

// NewProgram returns a new Tea program. A nil provider or a non-nil initErr
// starts the panel in the unsupported state.
func NewProgram(cfg Config, ttsCfg tts.Config, p tts.Provider, initErr error) *tea.Program {
	log.Debug("starting voicedeck", "engine", cfg.Engine, "supported", initErr == nil)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, ttsCfg, p, initErr), opts...)
}

type model struct {
	cfg  Config
	keys keyMap

	provider   tts.Provider
	catalog    *tts.Catalog
	controller *tts.Controller
	ctx        context.Context
	cancel     context.CancelFunc

	unsupported bool
	initErr     error
	hint        string // Rendered unsupported explanation

	width  int
	height int
	focus  field

	text     textarea.Model
	language selector
	gender   selector
	voices   voicePicker
	rate     slider
	pitch    slider
	volume   slider

	caps           tts.Capabilities
	loadingVoices  bool
	wantVoice      string // Voice from the configuration, kept until voices load
	filterPrevious string // Selection before the voice filter opened
	activated      bool

	spinner spinner.Model
	help    help.Model

	flash   string
	flashID int
}

func newModel(cfg Config, ttsCfg tts.Config, p tts.Provider, initErr error) model {
	ctx, cancel := context.WithCancel(context.Background())

	ta := textarea.New()
	ta.Placeholder = "Type something to say…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(max(2, cfg.TextHeight))
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = spinnerStyle

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := model{
		cfg:            cfg,
		keys:           newKeyMap(),
		provider:       p,
		ctx:            ctx,
		cancel:         cancel,
		text:           ta,
		language:       newLanguageSelector(ttsCfg.Language),
		gender:         newGenderSelector(ttsCfg.GenderFilter()),
		voices:         newVoicePicker(),
		spinner:        sp,
		help:           h,
		wantVoice:      ttsCfg.Voice,
	}

	m.caps = tts.DefaultCapabilities()
	if p == nil || initErr != nil {
		m.unsupported = true
		m.initErr = initErr
		m.keys.disableControls()
		m.text.Blur()
	} else {
		m.caps = p.Capabilities()
		m.catalog = tts.NewCatalog(p)
		m.catalog.SetPollInterval(ttsCfg.PollInterval)
		m.catalog.Refresh()
		m.controller = tts.NewController(p, m.catalog, tts.WithMarkdownStripping(ttsCfg.StripMarkdown))
		m.loadingVoices = !m.catalog.Ready()
	}

	m.rate = newSlider(m.caps.Rate, ttsCfg.Rate)
	m.pitch = newSlider(m.caps.Pitch, ttsCfg.Pitch)
	m.volume = newSlider(m.caps.Volume, ttsCfg.Volume)

	text := cfg.Text
	if text == "" {
		text = m.profile().SampleText
	}
	m.text.SetValue(text)

	m.refreshVoices()
	return m
}

func (m model) Init() tea.Cmd {
	if m.unsupported {
		return nil
	}

	cmds := []tea.Cmd{
		tts.WaitForEventCmd(m.provider.Events()),
		textarea.Blink,
	}
	if m.loadingVoices {
		log.Debug("waiting for voices", "provider", m.provider.Name())
		cmds = append(cmds, tts.LoadVoicesCmd(m.ctx, m.catalog), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tts.EventMsg:
		wasSpinning := m.spinning()
		m.controller.HandleEvent(msg.Event)
		if msg.Event.Kind == tts.EventVoicesChanged {
			m.loadingVoices = !m.catalog.Ready()
			m.refreshVoices()
		}
		cmds = append(cmds, tts.WaitForEventCmd(m.provider.Events()))
		if !wasSpinning && m.spinning() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case tts.EventsClosedMsg:
		log.Debug("provider event stream closed")
		return m, nil

	case tts.VoicesLoadedMsg:
		if msg.Err != nil {
			log.Debug("voice loading stopped", "error", msg.Err)
			return m, nil
		}
		log.Debug("voices loaded", "count", len(msg.Voices))
		m.loadingVoices = false
		m.refreshVoices()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			log.Warn("could not read clipboard", "error", msg.err)
			return m, m.showFlash("Clipboard unavailable")
		}
		m.text.SetValue(msg.text)
		return m, m.showFlash(fmt.Sprintf("Pasted %s characters", humanize.Comma(int64(utf8.RuneCountInString(msg.text)))))

	case flashTimeoutMsg:
		if int(msg) == m.flashID {
			m.flash = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.spinning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == fieldText && !m.unsupported {
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, m.quit()
	}

	if m.unsupported {
		switch {
		case key.Matches(msg, m.keys.Exit):
			return m, m.quit()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	// Audio backends may need a user gesture before the first utterance.
	if !m.activated {
		m.activated = true
		m.controller.Activate()
	}

	if m.voices.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus.next(1))
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus.next(-1))
		return m, nil
	case key.Matches(msg, m.keys.Play):
		return m, m.play()
	case key.Matches(msg, m.keys.Pause):
		m.pause()
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		m.stop()
		return m, nil
	case key.Matches(msg, m.keys.Paste):
		return m, readClipboard
	}

	if m.focus == fieldText {
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.controller.State() == tts.StateSpeaking {
			m.pause()
			return m, nil
		}
		return m, m.play()
	case key.Matches(msg, m.keys.Halt):
		m.stop()
	case key.Matches(msg, m.keys.Left):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Right):
		m.adjust(1)
	case key.Matches(msg, m.keys.Filter):
		if m.focus == fieldVoice && !m.voices.empty() {
			m.filterPrevious = m.voices.name()
			return m, m.voices.startFilter()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Exit):
		return m, m.quit()
	}
	return m, nil
}

func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.voices.stopFilter(m.filterPrevious)
		return m, nil
	case tea.KeyEnter:
		m.voices.stopFilter("")
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		m.voices.move(-1)
		return m, nil
	case tea.KeyDown, tea.KeyTab:
		m.voices.move(1)
		return m, nil
	}
	return m, m.voices.updateFilter(msg)
}

func (m *model) setFocus(f field) {
	m.focus = f
	if f == fieldText {
		m.text.Focus()
	} else {
		m.text.Blur()
	}
}

// adjust changes the focused selector or slider.
func (m *model) adjust(delta int) {
	switch m.focus {
	case fieldLanguage:
		prev := m.profile()
		if m.language.move(delta) {
			m.languageChanged(prev)
		}
	case fieldGender:
		if m.gender.move(delta) {
			m.refreshVoices()
		}
	case fieldVoice:
		m.voices.move(delta)
	case fieldRate:
		m.rate.step(delta)
	case fieldPitch:
		m.pitch.step(delta)
	case fieldVolume:
		m.volume.step(delta)
	}
}

// languageChanged swaps in the sample text of the new language unless the
// user typed their own, and repopulates the voices.
func (m *model) languageChanged(prev voice.LanguageProfile) {
	current := strings.TrimSpace(m.text.Value())
	if current == "" || current == prev.SampleText {
		m.text.SetValue(m.profile().SampleText)
	}
	m.voices.setSelection(voice.Selection{}, "")
	m.refreshVoices()
}

// refreshVoices filters the catalog for the current language and gender.
func (m *model) refreshVoices() {
	if m.catalog == nil {
		return
	}

	sel := m.catalog.Filter(m.language.value(), m.genderFilter())

	keep := m.voices.name()
	if m.voices.filtering {
		keep = m.filterPrevious
		m.voices.stopFilter("")
		m.filterPrevious = ""
	}
	if _, ok := voice.Find(sel.Candidates, m.wantVoice); ok {
		keep = m.wantVoice
	}
	m.voices.setSelection(sel, keep)

	// The configured voice only seeds the first list.
	if m.catalog.Ready() {
		m.wantVoice = ""
	}
	log.Debug("voices filtered",
		"lang", m.language.value(),
		"gender", m.gender.value(),
		"candidates", len(sel.Candidates),
		"selected", m.voices.name(),
	)
}

func (m model) profile() voice.LanguageProfile {
	p, _ := voice.LookupProfile(m.language.value())
	return p
}

func (m model) genderFilter() voice.GenderFilter {
	g, _ := voice.ParseGenderFilter(m.gender.value())
	return g
}

// settings collects the current form values.
func (m model) settings() tts.Settings {
	name := m.voices.name()
	if name == "" {
		name = tts.DefaultVoice
	}
	return tts.Settings{
		Text:     m.text.Value(),
		Language: m.language.value(),
		Gender:   m.genderFilter(),
		Voice:    name,
		Rate:     m.rate.value,
		Pitch:    m.pitch.value,
		Volume:   m.volume.value,
	}
}

func (m *model) play() tea.Cmd {
	m.flash = ""
	wasSpinning := m.spinning()
	if err := m.controller.Play(m.settings()); err != nil {
		log.Debug("play rejected", "error", err)
		return nil
	}
	if !wasSpinning && m.spinning() {
		return m.spinner.Tick
	}
	return nil
}

func (m *model) pause() {
	_ = m.controller.Pause()
}

func (m *model) stop() {
	_ = m.controller.Stop()
}

func (m *model) quit() tea.Cmd {
	m.cancel()
	if m.controller != nil {
		_ = m.controller.Stop()
	}
	return tea.Quit
}

func (m *model) showFlash(msg string) tea.Cmd {
	m.flashID++
	m.flash = msg
	id := m.flashID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return flashTimeoutMsg(id)
	})
}

// spinning reports whether something is pending.
func (m model) spinning() bool {
	if m.unsupported {
		return false
	}
	return m.loadingVoices || m.controller.Status().Kind == tts.StatusPending
}

// status returns the status to display.
func (m model) status() tts.Status {
	if m.unsupported {
		return tts.UnsupportedStatus()
	}
	st := m.controller.Status()
	if st.Kind == tts.StatusReady && m.voices.empty() && !m.loadingVoices {
		return tts.NoVoicesStatus()
	}
	return st
}

func (m *model) setSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w

	inner := max(20, w-labelWidth-4)
	m.text.SetWidth(max(20, w-4))
	for _, s := range []*slider{&m.rate, &m.pitch, &m.volume} {
		s.setWidth(inner - 6)
	}
	if m.unsupported {
		m.hint = renderUnsupported(m.cfg.GlamourStyle, m.cfg.Engine, m.initErr, w)
	}
}

// COMMANDS

func readClipboard() tea.Msg {
	text, err := clipboard.ReadAll()
	return clipboardMsg{text: text, err: err}
}
