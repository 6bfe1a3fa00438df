// Package elevenlabs synthesizes speech with the ElevenLabs HTTP API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.elevenlabs.io"

// Config configures the ElevenLabs engine.
type Config struct {
	APIKey   string
	ModelID  string
	BaseURL  string
	Language string // Language tag assigned to every listed voice
	Timeout  time.Duration
}

// Engine lists voices and synthesizes MP3 audio over HTTPS.
type Engine struct {
	config     Config
	httpClient *http.Client

	mu     sync.Mutex
	voices []voice.Voice

	changed chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates the engine and starts fetching the voice list. Voices
// returns an empty list until the fetch succeeds.
func New(config Config) (*Engine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: elevenlabs api key", tts.ErrMissingConfig)
	}
	if config.ModelID == "" {
		config.ModelID = "eleven_multilingual_v2"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Language == "" {
		config.Language = "en-US"
	}
	if config.Timeout <= 0 {
		config.Timeout = 20 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		changed:    make(chan struct{}, 1),
		cancel:     cancel,
	}

	e.wg.Add(1)
	go e.loadVoices(ctx)

	return e, nil
}

// Name returns "elevenlabs".
func (e *Engine) Name() string { return "elevenlabs" }

// Voices returns the voices fetched so far.
func (e *Engine) Voices() []voice.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]voice.Voice(nil), e.voices...)
}

// VoicesChanged signals once the voice list arrived.
func (e *Engine) VoicesChanged() <-chan struct{} {
	return e.changed
}

// Capabilities reports the speed range the API accepts.
func (e *Engine) Capabilities() tts.Capabilities {
	caps := tts.DefaultCapabilities()
	caps.Rate = tts.Range{Min: 0.7, Max: 1.2, Step: 0.05, Default: 1}
	caps.RequiresNetwork = true
	return caps
}

type voicesResponse struct {
	Voices []struct {
		VoiceID string            `json:"voice_id"`
		Name    string            `json:"name"`
		Labels  map[string]string `json:"labels"`
	} `json:"voices"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
}

// loadVoices retries the voice list with exponential backoff until it
// succeeds or the engine is closed.
func (e *Engine) loadVoices(ctx context.Context) {
	defer e.wg.Done()

	vs, err := backoff.Retry(ctx, func() ([]voice.Voice, error) {
		vs, err := e.fetchVoices(ctx)
		var se *tts.SynthesisError
		if errors.As(err, &se) && se.Code == "not-allowed" {
			return nil, backoff.Permanent(err)
		}
		return vs, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(8))
	if err != nil {
		log.Warn("could not load elevenlabs voices", "err", err)
		return
	}

	e.mu.Lock()
	e.voices = vs
	e.mu.Unlock()

	log.Debug("elevenlabs voices loaded", "count", len(vs))
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

func (e *Engine) fetchVoices(ctx context.Context) ([]voice.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.BaseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, tts.NewSynthesisError("network", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var body voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}

	vs := make([]voice.Voice, 0, len(body.Voices))
	for _, v := range body.Voices {
		vs = append(vs, voice.Voice{
			Name:        displayName(v.Name, v.Labels),
			Identifier:  v.VoiceID,
			LanguageTag: e.languageOf(v.Labels),
		})
	}
	return vs, nil
}

// Synthesize requests an MP3 rendition of req and decodes it.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (audio.Clip, error) {
	id, err := e.pickVoice(req)
	if err != nil {
		return audio.Clip{}, err
	}

	body, err := json.Marshal(ttsRequest{
		Text:    req.Text,
		ModelID: e.config.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Speed:           e.Capabilities().Rate.Clamp(req.Rate),
		},
	})
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", e.config.BaseURL, url.PathEscape(id))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", e.config.APIKey)

	log.Debug("elevenlabs synthesis", "voice", id, "chars", len(req.Text))

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		code := "network"
		if errors.Is(err, context.DeadlineExceeded) {
			code = "timeout"
		}
		return audio.Clip{}, tts.NewSynthesisError(code, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return audio.Clip{}, statusError(resp)
	}

	clip, err := audio.DecodeMP3(resp.Body)
	if err != nil {
		return audio.Clip{}, tts.NewSynthesisError("decode-failed", err)
	}
	return clip, nil
}

// Close stops the voice list fetch.
func (e *Engine) Close() error {
	e.cancel()
	e.wg.Wait()
	e.httpClient.CloseIdleConnections()
	return nil
}

// pickVoice returns the voice ID for req: the explicit voice, else the
// first listed voice.
func (e *Engine) pickVoice(req tts.Request) (string, error) {
	vs := e.Voices()
	if req.Voice != nil {
		if req.Voice.Identifier != "" {
			return req.Voice.Identifier, nil
		}
		for _, v := range vs {
			if v.Name == req.Voice.Name {
				return v.Identifier, nil
			}
		}
	}
	if len(vs) == 0 {
		return "", tts.NewSynthesisError("voice-unavailable", tts.ErrNoVoices)
	}
	return vs[0].Identifier, nil
}

func (e *Engine) languageOf(labels map[string]string) string {
	if lang := labels["language"]; lang != "" {
		return lang
	}
	return e.config.Language
}

// displayName appends the gender and accent labels so voices can be
// classified by name.
func displayName(name string, labels map[string]string) string {
	var extra []string
	for _, key := range []string{"gender", "accent"} {
		if v := labels[key]; v != "" {
			extra = append(extra, v)
		}
	}
	if len(extra) == 0 {
		return name
	}
	return fmt.Sprintf("%s - %s", name, strings.Join(extra, ", "))
}

func statusError(resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := fmt.Errorf("ElevenLabs API error: %s - %s", resp.Status, strings.TrimSpace(string(respBody)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return tts.NewSynthesisError("not-allowed", err)
	case resp.StatusCode == http.StatusTooManyRequests:
		return tts.NewSynthesisError("rate-limited", err)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return tts.NewSynthesisError("invalid-argument", err)
	case resp.StatusCode >= 500:
		return tts.NewSynthesisError("network", err)
	default:
		return tts.NewSynthesisError("synthesis-failed", err)
	}
}
