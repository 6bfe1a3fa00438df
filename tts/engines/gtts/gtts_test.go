package gtts

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

func TestPickAccent(t *testing.T) {
	tests := []struct {
		name     string
		req      tts.Request
		wantLang string
		wantTLD  string
	}{
		{"explicit voice", tts.Request{Voice: &voice.Voice{Name: "Google UK English Female"}, LanguageTag: "en-US"}, "en", "co.uk"},
		{"exact tag", tts.Request{LanguageTag: "en-AU"}, "en", "com.au"},
		{"profile tag", tts.Request{LanguageTag: "zh-CN"}, "zh-CN", "com"},
		{"language only", tts.Request{LanguageTag: "en-NZ"}, "en", "com"},
		{"regional chinese", tts.Request{LanguageTag: "zh-HK"}, "zh-CN", "com"},
		{"russian", tts.Request{LanguageTag: "ru-RU"}, "ru", "com"},
		{"unknown language", tts.Request{LanguageTag: "fr-FR"}, "fr", "com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := pickAccent(tt.req)
			if a.lang != tt.wantLang || a.tld != tt.wantTLD {
				t.Errorf("pickAccent() = %s/%s, want %s/%s", a.lang, a.tld, tt.wantLang, tt.wantTLD)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	a := accent{lang: "en", tld: "co.uk"}

	tests := []struct {
		name  string
		speed float64
		slow  bool
	}{
		{"normal", 1, false},
		{"fast", 2, false},
		{"slow", 0.5, true},
		{"boundary", 0.75, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := buildArgs(a, tt.speed)
			if slices.Contains(args, "--slow") != tt.slow {
				t.Errorf("buildArgs(%v) = %v, slow want %v", tt.speed, args, tt.slow)
			}
			if !slices.Equal(args[:5], []string{"-", "--lang", "en", "--tld", "co.uk"}) {
				t.Errorf("buildArgs() prefix = %v", args[:5])
			}
		})
	}
}

func TestSynthesizeRunnerError(t *testing.T) {
	run := func(ctx context.Context, name, stdin string, args ...string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}
	e := newEngine(Config{RequestsPerMinute: 600}, "gtts-cli", run)

	_, err := e.Synthesize(context.Background(), tts.Request{Text: "hi", LanguageTag: "en-US"})
	if code := tts.ErrorCode(err); code != "network" {
		t.Errorf("ErrorCode() = %q, want network", code)
	}
}

func TestSynthesizeDecodeError(t *testing.T) {
	var gotStdin string
	run := func(ctx context.Context, name, stdin string, args ...string) ([]byte, error) {
		gotStdin = stdin
		return []byte("definitely not mp3"), nil
	}
	e := newEngine(Config{RequestsPerMinute: 600}, "gtts-cli", run)

	_, err := e.Synthesize(context.Background(), tts.Request{Text: "hello there", LanguageTag: "en-US"})
	if code := tts.ErrorCode(err); code != "decode-failed" {
		t.Errorf("ErrorCode() = %q, want decode-failed", code)
	}
	if gotStdin != "hello there" {
		t.Errorf("stdin = %q, want the text", gotStdin)
	}
}

func TestSynthesizeTextTooLong(t *testing.T) {
	called := false
	run := func(ctx context.Context, name, stdin string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}
	e := newEngine(Config{}, "gtts-cli", run)

	_, err := e.Synthesize(context.Background(), tts.Request{Text: strings.Repeat("a", maxTextSize+1)})
	if tts.ErrorCode(err) != "text-too-long" {
		t.Errorf("error = %v, want text-too-long", err)
	}
	if called {
		t.Error("runner called for oversized text")
	}
}

func TestSynthesizeRateLimited(t *testing.T) {
	run := func(ctx context.Context, name, stdin string, args ...string) ([]byte, error) {
		return nil, errors.New("offline")
	}
	e := newEngine(Config{RequestsPerMinute: 1}, "gtts-cli", run)

	// The first request uses the burst.
	_, _ = e.Synthesize(context.Background(), tts.Request{Text: "one"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := e.Synthesize(ctx, tts.Request{Text: "two"})
	if err == nil || tts.ErrorCode(err) == "network" {
		t.Errorf("second request error = %v, want rate limit wait failure", err)
	}
}

func TestVoices(t *testing.T) {
	e := newEngine(Config{}, "gtts-cli", runCommand)

	vs := e.Voices()
	if len(vs) != len(accents) {
		t.Fatalf("Voices() returned %d voices, want %d", len(vs), len(accents))
	}
	if !e.Capabilities().RequiresNetwork {
		t.Error("Capabilities().RequiresNetwork = false")
	}
}
