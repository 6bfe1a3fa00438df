// Package mock provides an in-memory provider that simulates speech with
// timers. It needs no audio device.
package mock

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// DefaultVoices is the voice list reported when Config.Voices is nil.
var DefaultVoices = []voice.Voice{
	{Name: "Microsoft Zira Desktop - English (United States)", Identifier: "mock-zira", LanguageTag: "en-US"},
	{Name: "Microsoft David Desktop - English (United States)", Identifier: "mock-david", LanguageTag: "en-US"},
	{Name: "Mock Narrator", Identifier: "mock-narrator", LanguageTag: "en-GB"},
	{Name: "Microsoft Huihui Desktop - Chinese (Simplified)", Identifier: "mock-huihui", LanguageTag: "zh-CN"},
	{Name: "Microsoft Kangkang Desktop - Chinese (Simplified)", Identifier: "mock-kangkang", LanguageTag: "zh-CN"},
	{Name: "alena", Identifier: "mock-alena", LanguageTag: "ru-RU"},
	{Name: "filipp", Identifier: "mock-filipp", LanguageTag: "ru-RU"},
}

// Config configures the mock engine.
type Config struct {
	Voices         []voice.Voice
	VoiceDelay     time.Duration // Voices appear after this delay
	WordsPerMinute int           // Simulated speaking speed at rate 1
	Manual         bool          // Never emit lifecycle events on its own
}

// Call is one recorded provider call.
type Call struct {
	Op      string // speak, pause, resume or cancel
	Request tts.Request
}

type utterance struct {
	id        string
	remaining time.Duration
	startedAt time.Time
	timer     *time.Timer
	paused    bool
}

// Engine implements tts.Provider for tests and demos.
type Engine struct {
	config Config
	events chan tts.Event
	done   chan struct{}

	mu         sync.Mutex
	voices     []voice.Voice
	voiceTimer *time.Timer
	current    *utterance
	calls      []Call
	speakErr   error
	closed     bool
}

// New creates a mock engine.
func New(config Config) *Engine {
	if config.Voices == nil {
		config.Voices = DefaultVoices
	}
	if config.WordsPerMinute <= 0 {
		config.WordsPerMinute = 150
	}

	e := &Engine{
		config: config,
		events: make(chan tts.Event, 64),
		done:   make(chan struct{}),
	}

	if config.VoiceDelay <= 0 {
		e.voices = append([]voice.Voice(nil), config.Voices...)
	} else {
		e.voiceTimer = time.AfterFunc(config.VoiceDelay, func() {
			e.SetVoices(config.Voices)
		})
	}

	return e
}

// Name returns "mock".
func (e *Engine) Name() string { return "mock" }

// Voices returns the current voice list.
func (e *Engine) Voices() []voice.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]voice.Voice(nil), e.voices...)
}

// SetVoices replaces the voice list and emits EventVoicesChanged.
func (e *Engine) SetVoices(vs []voice.Voice) {
	e.mu.Lock()
	e.voices = append([]voice.Voice(nil), vs...)
	e.mu.Unlock()

	log.Debug("mock voices changed", "count", len(vs))
	e.Emit(tts.Event{Kind: tts.EventVoicesChanged})
}

// Speak simulates speaking req.
func (e *Engine) Speak(req tts.Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return tts.ErrProviderClosed
	}
	e.calls = append(e.calls, Call{Op: "speak", Request: req})
	if e.speakErr != nil {
		return e.speakErr
	}

	e.stopLocked()
	if e.config.Manual {
		return nil
	}

	u := &utterance{
		id:        req.ID,
		remaining: e.estimateDuration(req.Text, req.Rate),
		startedAt: time.Now(),
	}
	e.current = u
	e.trySend(tts.Event{Kind: tts.EventStart, ID: u.id})
	u.timer = time.AfterFunc(u.remaining, func() { e.finish(u) })
	return nil
}

// Pause freezes the simulated utterance.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, Call{Op: "pause"})
	if u := e.current; u != nil && !u.paused {
		u.timer.Stop()
		u.remaining -= time.Since(u.startedAt)
		u.paused = true
	}
	return nil
}

// Resume continues the simulated utterance.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, Call{Op: "resume"})
	if u := e.current; u != nil && u.paused {
		u.paused = false
		u.startedAt = time.Now()
		u.timer = time.AfterFunc(max(u.remaining, 0), func() { e.finish(u) })
	}
	return nil
}

// Cancel drops the simulated utterance without events.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, Call{Op: "cancel"})
	e.stopLocked()
	return nil
}

// Events returns the event channel.
func (e *Engine) Events() <-chan tts.Event { return e.events }

// Capabilities returns the default ranges.
func (e *Engine) Capabilities() tts.Capabilities {
	caps := tts.DefaultCapabilities()
	caps.SupportsPitch = true
	return caps
}

// Close stops all timers.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.stopLocked()
	if e.voiceTimer != nil {
		e.voiceTimer.Stop()
	}
	close(e.done)
	return nil
}

// Emit delivers an event as if the engine produced it.
func (e *Engine) Emit(ev tts.Event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// SetSpeakError makes Speak fail with err. Nil restores normal operation.
func (e *Engine) SetSpeakError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// Calls returns the recorded calls.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallCount returns how many calls of op were made.
func (e *Engine) CallCount(op string) int {
	n := 0
	for _, c := range e.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// trySend queues ev without blocking. The caller holds mu.
func (e *Engine) trySend(ev tts.Event) {
	select {
	case e.events <- ev:
	default:
		log.Warn("mock event dropped", "kind", ev.Kind, "id", ev.ID)
	}
}

func (e *Engine) finish(u *utterance) {
	e.mu.Lock()
	if e.current != u || u.paused {
		e.mu.Unlock()
		return
	}
	e.current = nil
	e.mu.Unlock()

	e.Emit(tts.Event{Kind: tts.EventEnd, ID: u.id})
}

func (e *Engine) stopLocked() {
	if e.current == nil {
		return
	}
	e.current.timer.Stop()
	e.current = nil
}

// estimateDuration estimates speaking duration for text.
func (e *Engine) estimateDuration(text string, rate float64) time.Duration {
	words := len(strings.Fields(text))
	if words < 1 {
		return 0
	}
	if rate <= 0 {
		rate = 1
	}
	seconds := float64(words) * 60.0 / float64(e.config.WordsPerMinute) / rate
	return time.Duration(seconds * float64(time.Second))
}
