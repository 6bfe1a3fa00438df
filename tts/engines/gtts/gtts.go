// Package gtts synthesizes speech through gtts-cli, the command line
// client of Google Translate's text-to-speech endpoint.
package gtts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	"golang.org/x/time/rate"
)

// maxTextSize is the longest text sent in one request.
const maxTextSize = 5000

// slowBelow is the rate under which the slow voice is used.
const slowBelow = 0.75

// ErrBinaryNotFound is returned when gtts-cli is missing.
var ErrBinaryNotFound = errors.New("gtts-cli not found")

// Config configures the gTTS engine.
type Config struct {
	Binary            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// accent is a language and the Google domain that serves its accent.
type accent struct {
	voice voice.Voice
	lang  string
	tld   string
}

var accents = []accent{
	{voice.Voice{Name: "Google US English", Identifier: "en-com", LanguageTag: "en-US"}, "en", "com"},
	{voice.Voice{Name: "Google UK English Female", Identifier: "en-co.uk", LanguageTag: "en-GB"}, "en", "co.uk"},
	{voice.Voice{Name: "Google Australian English", Identifier: "en-com.au", LanguageTag: "en-AU"}, "en", "com.au"},
	{voice.Voice{Name: "Google India English", Identifier: "en-co.in", LanguageTag: "en-IN"}, "en", "co.in"},
	{voice.Voice{Name: "Google 普通话（中国大陆）", Identifier: "zh-CN", LanguageTag: "zh-CN"}, "zh-CN", "com"},
	{voice.Voice{Name: "Google 國語（臺灣）", Identifier: "zh-TW", LanguageTag: "zh-TW"}, "zh-TW", "com"},
	{voice.Voice{Name: "Google русский", Identifier: "ru", LanguageTag: "ru-RU"}, "ru", "com"},
}

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, stdin string, args ...string) ([]byte, error)

// Engine implements a synthesizer backed by gtts-cli.
type Engine struct {
	config  Config
	binary  string
	limiter *rate.Limiter
	run     runFunc
}

// New creates a gTTS engine.
func New(config Config) (*Engine, error) {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}
	return newEngine(config, binary, runCommand), nil
}

func newEngine(config Config, binary string, run runFunc) *Engine {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 50
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Engine{
		config:  config,
		binary:  binary,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
		run:     run,
	}
}

// Name returns "gtts".
func (e *Engine) Name() string { return "gtts" }

// Voices returns the supported accents.
func (e *Engine) Voices() []voice.Voice {
	vs := make([]voice.Voice, len(accents))
	for i, a := range accents {
		vs[i] = a.voice
	}
	return vs
}

// Capabilities reports that gTTS only knows normal and slow speech.
func (e *Engine) Capabilities() tts.Capabilities {
	caps := tts.DefaultCapabilities()
	caps.RequiresNetwork = true
	return caps
}

// Synthesize fetches mp3 audio for req and decodes it.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (audio.Clip, error) {
	if len(req.Text) > maxTextSize {
		return audio.Clip{}, tts.NewSynthesisError("text-too-long",
			fmt.Errorf("text too long: %d characters (max %d)", len(req.Text), maxTextSize))
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return audio.Clip{}, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	a := pickAccent(req)
	args := buildArgs(a, req.Rate)
	log.Debug("running gtts-cli", "lang", a.lang, "tld", a.tld, "chars", len(req.Text))

	mp3Data, err := e.run(ctx, e.binary, req.Text, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return audio.Clip{}, tts.NewSynthesisError("timeout", err)
		}
		return audio.Clip{}, tts.NewSynthesisError("network", err)
	}

	clip, err := audio.DecodeMP3(bytes.NewReader(mp3Data))
	if err != nil {
		return audio.Clip{}, tts.NewSynthesisError("decode-failed", err)
	}
	return clip, nil
}

// pickAccent maps the request to an accent: the explicit voice, else the
// exact language tag, else the first accent of the language.
func pickAccent(req tts.Request) accent {
	if req.Voice != nil {
		for _, a := range accents {
			if a.voice.Name == req.Voice.Name {
				return a
			}
		}
	}
	for _, a := range accents {
		if strings.EqualFold(a.voice.LanguageTag, req.LanguageTag) {
			return a
		}
	}
	lang, _, _ := strings.Cut(req.LanguageTag, "-")
	for _, a := range accents {
		if strings.EqualFold(a.lang, lang) || strings.HasPrefix(strings.ToLower(a.lang), strings.ToLower(lang)+"-") {
			return a
		}
	}
	return accent{lang: lang, tld: "com"}
}

// buildArgs reads the text from stdin and writes mp3 to stdout.
func buildArgs(a accent, speed float64) []string {
	args := []string{"-", "--lang", a.lang, "--tld", a.tld}
	if speed > 0 && speed < slowBelow {
		args = append(args, "--slow")
	}
	return append(args, "--output", "-")
}

func runCommand(ctx context.Context, name string, stdin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
