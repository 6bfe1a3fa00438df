// Package audio decodes synthesized speech and plays it through the
// system audio device.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ErrPlayerClosed is returned after Close.
var ErrPlayerClosed = errors.New("player is closed")

// oto allows a single context per process.
var (
	sharedContext    *oto.Context
	sharedContextErr error
	sharedRate       int
	contextOnce      sync.Once
)

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate   int           // 44100 or 48000 Hz only
	BufferSize   time.Duration // Device buffer
	PollInterval time.Duration // How often finished playback is detected
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate:   44100,
		BufferSize:   100 * time.Millisecond,
		PollInterval: 20 * time.Millisecond,
	}
}

func validateConfig(config PlayerConfig) error {
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	if config.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	return nil
}

// Playback is one clip handed to the device.
type Playback struct {
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	stopped  bool
	duration time.Duration
}

// NewPlayback creates an unfinished playback of the given length.
func NewPlayback(d time.Duration) *Playback {
	return &Playback{done: make(chan struct{}), duration: d}
}

// Done is closed when the clip finished or was stopped.
func (pb *Playback) Done() <-chan struct{} {
	return pb.done
}

// Stopped reports whether the clip was stopped before its end.
func (pb *Playback) Stopped() bool {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.stopped
}

// Duration returns the clip length.
func (pb *Playback) Duration() time.Duration {
	return pb.duration
}

// Finish closes Done. Only the first call has an effect.
func (pb *Playback) Finish(stopped bool) {
	pb.once.Do(func() {
		pb.mu.Lock()
		pb.stopped = stopped
		pb.mu.Unlock()
		close(pb.done)
	})
}

// Player plays mono 16-bit clips on an oto context. One clip plays at a
// time; starting a new one stops the previous.
type Player struct {
	context *oto.Context
	config  PlayerConfig

	mu      sync.Mutex
	player  *oto.Player
	current *Playback
	data    []byte // keeps the PCM alive while oto reads it
	paused  bool
	closed  bool
}

// NewPlayer creates a new audio player with the specified configuration.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	contextOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   config.SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   config.BufferSize,
		})
		if err != nil {
			sharedContextErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		sharedContext = ctx
		sharedRate = config.SampleRate
	})
	if sharedContextErr != nil {
		return nil, sharedContextErr
	}
	if sharedRate != config.SampleRate {
		log.Warn("audio context already open with another sample rate", "rate", sharedRate, "requested", config.SampleRate)
		config.SampleRate = sharedRate
	}

	return &Player{context: sharedContext, config: config}, nil
}

// SampleRate returns the device sample rate clips are converted to.
func (p *Player) SampleRate() int {
	return p.config.SampleRate
}

// Play starts a clip at the given volume.
func (p *Player) Play(clip Clip, volume float64) (*Playback, error) {
	if clip.Empty() {
		return nil, ErrEmptyAudio
	}

	clip = clip.Convert(p.config.SampleRate)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPlayerClosed
	}
	p.stopLocked()

	data := clip.PCM
	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(clampVolume(volume))

	pb := NewPlayback(clip.Duration())
	p.player = player
	p.current = pb
	p.data = data
	p.paused = false

	player.Play()
	go p.watch(player, pb)

	log.Debug("playback started", "duration", pb.duration, "volume", volume)
	return pb, nil
}

// watch finishes pb once the device drained the clip.
func (p *Player) watch(player *oto.Player, pb *Playback) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pb.done:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.player != player {
			p.mu.Unlock()
			return
		}
		if !p.paused && !player.IsPlaying() {
			p.releaseLocked()
			p.mu.Unlock()
			pb.Finish(false)
			return
		}
		p.mu.Unlock()
	}
}

// Pause pauses the current clip.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil || p.paused {
		return nil
	}
	p.player.Pause()
	p.paused = true
	return nil
}

// Resume continues a paused clip.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil || !p.paused {
		return nil
	}
	p.player.Play()
	p.paused = false
	return nil
}

// Stop drops the current clip.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

// SetVolume changes the volume of the current clip.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player != nil {
		p.player.SetVolume(clampVolume(volume))
	}
}

// Close stops playback. The shared device context stays open.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.closed = true
	return nil
}

func (p *Player) stopLocked() {
	if p.player == nil {
		return
	}
	pb := p.current
	p.player.Pause()
	p.releaseLocked()
	pb.Finish(true)
}

func (p *Player) releaseLocked() {
	if err := p.player.Close(); err != nil {
		log.Debug("failed to close oto player", "error", err)
	}
	p.player = nil
	p.current = nil
	p.data = nil
	p.paused = false
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
