package engines

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// Synthesizer turns text into audio. Synthesize blocks until the clip is
// ready or ctx is canceled.
type Synthesizer interface {
	Name() string
	Voices() []voice.Voice
	Synthesize(ctx context.Context, req tts.Request) (audio.Clip, error)
	Capabilities() tts.Capabilities
}

// VoiceNotifier is implemented by synthesizers whose voice list changes
// after construction.
type VoiceNotifier interface {
	VoicesChanged() <-chan struct{}
}

// Sink plays clips. Play replaces whatever was playing.
type Sink interface {
	Play(clip audio.Clip, volume float64) (*audio.Playback, error)
	Pause() error
	Resume() error
	Stop() error
	Close() error
}

// Speaker adapts a Synthesizer and a Sink to tts.Provider. Speak runs
// synthesis in the background; EventStart is emitted once the audio
// reaches the sink. Canceled utterances emit nothing.
type Speaker struct {
	synth  Synthesizer
	sink   Sink
	events chan tts.Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	current *utterance
	closed  bool
}

type utterance struct {
	id       string
	cancel   context.CancelFunc
	paused   bool
	playback *audio.Playback
}

// NewSpeaker creates a provider from a synthesizer and a sink.
func NewSpeaker(synth Synthesizer, sink Sink) *Speaker {
	s := &Speaker{
		synth:  synth,
		sink:   sink,
		events: make(chan tts.Event, 16),
		done:   make(chan struct{}),
	}

	if n, ok := synth.(VoiceNotifier); ok {
		s.wg.Add(1)
		go s.forwardVoiceChanges(n.VoicesChanged())
	}

	return s
}

// Name returns the synthesizer name.
func (s *Speaker) Name() string { return s.synth.Name() }

// Voices returns the synthesizer voices.
func (s *Speaker) Voices() []voice.Voice { return s.synth.Voices() }

// Capabilities returns the synthesizer capabilities.
func (s *Speaker) Capabilities() tts.Capabilities { return s.synth.Capabilities() }

// Events returns the event channel.
func (s *Speaker) Events() <-chan tts.Event { return s.events }

// Speak starts synthesizing req, dropping any current utterance.
func (s *Speaker) Speak(req tts.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tts.ErrProviderClosed
	}
	s.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{id: req.ID, cancel: cancel}
	s.current = u

	s.wg.Add(1)
	go s.run(ctx, u, req)
	return nil
}

func (s *Speaker) run(ctx context.Context, u *utterance, req tts.Request) {
	defer s.wg.Done()
	defer u.cancel()

	if strings.TrimSpace(req.Text) == "" {
		if s.release(u) {
			s.emit(tts.Event{Kind: tts.EventStart, ID: u.id})
			s.emit(tts.Event{Kind: tts.EventEnd, ID: u.id})
		}
		return
	}

	clip, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		if ctx.Err() != nil || !s.release(u) {
			return
		}
		log.Error("synthesis failed", "engine", s.synth.Name(), "id", u.id, "error", err)
		s.emit(tts.Event{Kind: tts.EventError, ID: u.id, Code: tts.ErrorCode(err), Err: err})
		return
	}

	s.mu.Lock()
	if s.current != u {
		s.mu.Unlock()
		return
	}
	pb, err := s.sink.Play(clip, req.Volume)
	if err != nil {
		s.current = nil
		s.mu.Unlock()
		log.Error("audio output failed", "engine", s.synth.Name(), "id", u.id, "error", err)
		serr := tts.NewSynthesisError("audio-output", err)
		s.emit(tts.Event{Kind: tts.EventError, ID: u.id, Code: serr.Code, Err: serr})
		return
	}
	u.playback = pb
	if u.paused {
		_ = s.sink.Pause()
	}
	s.mu.Unlock()

	s.emit(tts.Event{Kind: tts.EventStart, ID: u.id})

	select {
	case <-pb.Done():
	case <-s.done:
		return
	}
	if pb.Stopped() || !s.release(u) {
		return
	}
	s.emit(tts.Event{Kind: tts.EventEnd, ID: u.id})
}

// release clears u if it is still current and reports whether it was.
func (s *Speaker) release(u *utterance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != u {
		return false
	}
	s.current = nil
	return true
}

// Pause pauses playback. A pause before the audio is ready is applied when
// playback begins.
func (s *Speaker) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	s.current.paused = true
	if s.current.playback != nil {
		return s.sink.Pause()
	}
	return nil
}

// Resume continues paused playback.
func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	s.current.paused = false
	if s.current.playback != nil {
		return s.sink.Resume()
	}
	return nil
}

// Cancel drops the current utterance.
func (s *Speaker) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelLocked()
}

func (s *Speaker) cancelLocked() error {
	u := s.current
	if u == nil {
		return nil
	}
	s.current = nil
	u.cancel()
	if u.playback != nil {
		return s.sink.Stop()
	}
	return nil
}

// Close cancels playback and releases the sink and the synthesizer.
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.cancelLocked()
	close(s.done)
	s.mu.Unlock()

	if c, ok := s.synth.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	s.wg.Wait()
	err = errors.Join(err, s.sink.Close())
	close(s.events)
	return err
}

func (s *Speaker) forwardVoiceChanges(ch <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			s.emit(tts.Event{Kind: tts.EventVoicesChanged})
		case <-s.done:
			return
		}
	}
}

func (s *Speaker) emit(ev tts.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
