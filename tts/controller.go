// Package tts provides the playback controller, the voice catalog and the
// provider contract of voicedeck.
package tts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	"github.com/rs/xid"
)

// Controller drives a Provider through the idle, speaking and paused
// states. Only one request is in flight at a time.
type Controller struct {
	provider Provider
	catalog  *Catalog

	mu       sync.Mutex
	machine  *StateMachine
	inFlight string // ID of the request owned by the provider
	status   Status

	stripMarkdown bool
	newID         func() string
	activateOnce  sync.Once
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMarkdownStripping makes Play speak the plain text of markdown input.
func WithMarkdownStripping(on bool) ControllerOption {
	return func(c *Controller) {
		c.stripMarkdown = on
	}
}

// WithIDGenerator replaces the request ID generator.
func WithIDGenerator(fn func() string) ControllerOption {
	return func(c *Controller) {
		c.newID = fn
	}
}

// NewController creates a controller in StateIdle.
func NewController(p Provider, catalog *Catalog, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: p,
		catalog:  catalog,
		machine:  NewStateMachine(),
		status:   newStatus(StatusReady),
		newID:    func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.machine.OnEnter(StateIdle, func() { c.inFlight = "" })
	return c
}

// Play starts speaking the settings' text, or resumes paused playback.
// While speaking it does nothing.
func (c *Controller) Play(s Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.machine.Current() {
	case StateSpeaking:
		return nil
	case StatePaused:
		if err := c.provider.Resume(); err != nil {
			log.Warn("resume failed", "provider", c.provider.Name(), "error", err)
		}
		c.machine.Transition(StateSpeaking)
		c.status = newStatus(StatusResumed)
		return nil
	}

	text := s.Text
	if c.stripMarkdown {
		text = PlainText(text)
	}
	// Stripping can leave only whitespace behind; raw text is sent as is.
	if text == "" || (c.stripMarkdown && strings.TrimSpace(text) == "") {
		c.status = newStatus(StatusInputError)
		return ErrEmptyInput
	}

	req := c.buildRequest(text, s)
	log.Debug("submitting utterance",
		"id", req.ID,
		"lang", req.LanguageTag,
		"voice", voiceName(req.Voice),
		"rate", req.Rate,
		"pitch", req.Pitch,
		"volume", req.Volume,
	)

	if err := c.provider.Speak(req); err != nil {
		c.fail(ErrorCode(err))
		return fmt.Errorf("speak: %w", err)
	}

	c.inFlight = req.ID
	c.machine.Transition(StateSpeaking)
	c.status = newStatus(StatusPending)
	return nil
}

// Pause pauses speaking. In any other state it does nothing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Current() != StateSpeaking {
		return nil
	}

	if err := c.provider.Pause(); err != nil {
		log.Warn("pause failed", "provider", c.provider.Name(), "error", err)
	}
	c.machine.Transition(StatePaused)
	c.status = newStatus(StatusPaused)
	return nil
}

// Stop cancels the in-flight request. The controller becomes idle
// immediately without waiting for the provider.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Current() == StateIdle {
		return nil
	}

	if err := c.provider.Cancel(); err != nil {
		log.Warn("cancel failed", "provider", c.provider.Name(), "error", err)
	}
	c.machine.Transition(StateIdle)
	c.status = newStatus(StatusStopped)
	return nil
}

// HandleEvent applies a provider event. Lifecycle events for anything but
// the in-flight request are ignored.
func (c *Controller) HandleEvent(ev Event) {
	if ev.Kind == EventVoicesChanged {
		if c.catalog != nil {
			c.catalog.Refresh()
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight == "" || ev.ID != c.inFlight {
		log.Debug("ignoring stale event", "kind", ev.Kind, "id", ev.ID)
		return
	}

	switch ev.Kind {
	case EventStart:
		if c.machine.Current() == StateSpeaking {
			c.status = newStatus(StatusPlaying)
		}
	case EventEnd:
		c.machine.Transition(StateIdle)
		c.status = newStatus(StatusFinished)
	case EventError:
		log.Error("speech synthesis error", "provider", c.provider.Name(), "code", ev.Code, "error", ev.Err)
		code := ev.Code
		if code == "" {
			code = ErrorCode(ev.Err)
		}
		c.fail(code)
	}
}

// Activate submits and immediately cancels a silent empty utterance, once.
// Some audio backends only start after a user gesture. It never changes the
// state or the status, and its failures are only logged.
func (c *Controller) Activate() {
	c.activateOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.machine.Current() != StateIdle {
			return
		}

		probe := Request{ID: c.newID(), Rate: 1, Pitch: 1, Volume: 0}
		if err := c.provider.Speak(probe); err != nil {
			log.Debug("activation probe failed", "error", err)
			return
		}
		if err := c.provider.Cancel(); err != nil {
			log.Debug("activation probe cancel failed", "error", err)
		}
	})
}

// ResolveVoice picks the voice and language tag a request is submitted with.
func (c *Controller) ResolveVoice(s Settings) (*voice.Voice, string) {
	tag := s.Language
	profile, hasProfile := voice.LookupProfile(s.Language)
	if hasProfile {
		tag = profile.LanguageTag
	}

	name := s.Voice
	if name == "" || name == DefaultVoice {
		if !hasProfile {
			return nil, tag
		}
		name = profile.DefaultName(s.Gender)
	}

	if c.catalog == nil {
		return nil, tag
	}
	v, ok := c.catalog.Lookup(name)
	if !ok {
		return nil, tag
	}
	return &v, v.LanguageTag
}

// State returns the current playback state.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Status returns the current status line.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// InFlight returns the ID of the request owned by the provider, if any.
func (c *Controller) InFlight() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) buildRequest(text string, s Settings) Request {
	v, tag := c.ResolveVoice(s)
	return Request{
		ID:          c.newID(),
		Text:        text,
		Voice:       v,
		LanguageTag: tag,
		Rate:        s.Rate,
		Pitch:       s.Pitch,
		Volume:      s.Volume,
	}
}

// fail resets to idle and reports a provider error. The caller holds mu.
func (c *Controller) fail(code string) {
	c.machine.Transition(StateIdle)
	c.status = providerErrorStatus(code)
}

func voiceName(v *voice.Voice) string {
	if v == nil {
		return "<provider default>"
	}
	return v.Name
}
