package tts

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// DefaultPollInterval is the fixed delay between voice list polls.
const DefaultPollInterval = 100 * time.Millisecond

// VoiceSource enumerates voices.
type VoiceSource interface {
	Voices() []voice.Voice
}

// Catalog owns the last voice list fetched from a provider. It is NotReady
// until a non-empty list has been seen.
type Catalog struct {
	source   VoiceSource
	interval time.Duration

	mu     sync.RWMutex
	voices []voice.Voice
}

// NewCatalog creates a catalog reading from src.
func NewCatalog(src VoiceSource) *Catalog {
	return &Catalog{
		source:   src,
		interval: DefaultPollInterval,
	}
}

// SetPollInterval changes the delay used by Load.
func (c *Catalog) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Refresh re-reads the voice list and reports whether it is non-empty.
func (c *Catalog) Refresh() bool {
	vs := c.source.Voices()

	c.mu.Lock()
	c.voices = append([]voice.Voice(nil), vs...)
	c.mu.Unlock()

	log.Debug("voice list refreshed", "count", len(vs))
	return len(vs) > 0
}

// Ready reports whether voices are available.
func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.voices) > 0
}

// Voices returns a copy of the last fetched voice list.
func (c *Catalog) Voices() []voice.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]voice.Voice(nil), c.voices...)
}

// Load polls the source at a fixed interval until it reports voices or ctx
// is done.
func (c *Catalog) Load(ctx context.Context) ([]voice.Voice, error) {
	poll := func() ([]voice.Voice, error) {
		if !c.Refresh() {
			return nil, ErrNoVoices
		}
		return c.Voices(), nil
	}

	return backoff.Retry(ctx, poll,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.interval)),
		backoff.WithMaxElapsedTime(0),
	)
}

// Filter narrows the owned voice list for a language and gender.
func (c *Catalog) Filter(languageCode string, g voice.GenderFilter) voice.Selection {
	return voice.Filter(c.Voices(), languageCode, g)
}

// Lookup finds a voice by exact name in the owned voice list.
func (c *Catalog) Lookup(name string) (voice.Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return voice.Find(c.voices, name)
}
