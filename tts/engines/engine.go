// Package engines builds tts.Provider implementations from configuration.
// Synthesizing engines live in sub-packages and are combined with an audio
// sink by Speaker.
package engines

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/engines/elevenlabs"
	"github.com/dgnsrekt/voicedeck/tts/engines/gtts"
	"github.com/dgnsrekt/voicedeck/tts/engines/mock"
	"github.com/dgnsrekt/voicedeck/tts/engines/piper"
	"github.com/dgnsrekt/voicedeck/tts/engines/yandex"
	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// newSink opens the audio output. Replaced in tests.
var newSink = func(config audio.PlayerConfig) (Sink, error) {
	return audio.NewPlayer(config)
}

// New creates the provider named by cfg.Engine. A missing engine binary or
// audio device is reported as tts.ErrUnsupported.
func New(cfg tts.Config) (tts.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Engine == tts.EngineMock {
		return mock.New(mock.Config{
			VoiceDelay:     cfg.Mock.VoiceDelay,
			WordsPerMinute: cfg.Mock.WordsPerMinute,
		}), nil
	}

	synth, err := newSynthesizer(cfg)
	if err != nil {
		return nil, err
	}

	playerConfig := audio.DefaultPlayerConfig()
	playerConfig.SampleRate = cfg.SampleRate
	sink, err := newSink(playerConfig)
	if err != nil {
		if c, ok := synth.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("%w: audio output: %v", tts.ErrUnsupported, err)
	}

	log.Debug("provider ready", "engine", synth.Name(), "sample_rate", cfg.SampleRate)
	return NewSpeaker(synth, sink), nil
}

// ListVoices returns the voices of the configured engine without opening
// an audio device. Engines that load their list in the background are
// polled until voices appear or ctx is done.
func ListVoices(ctx context.Context, cfg tts.Config) ([]voice.Voice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var src tts.VoiceSource
	if cfg.Engine == tts.EngineMock {
		src = mock.New(mock.Config{
			VoiceDelay:     cfg.Mock.VoiceDelay,
			WordsPerMinute: cfg.Mock.WordsPerMinute,
		})
	} else {
		synth, err := newSynthesizer(cfg)
		if err != nil {
			return nil, err
		}
		src = synth
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}

	catalog := tts.NewCatalog(src)
	catalog.SetPollInterval(cfg.PollInterval)
	vs, err := catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrNoVoices, err)
	}
	return vs, nil
}

func newSynthesizer(cfg tts.Config) (Synthesizer, error) {
	switch cfg.Engine {
	case tts.EnginePiper:
		e, err := piper.New(piper.Config{
			Binary:  cfg.Piper.Binary,
			DataDir: cfg.Piper.DataDir,
			Timeout: cfg.Piper.Timeout,
		})
		if errors.Is(err, piper.ErrBinaryNotFound) {
			return nil, fmt.Errorf("%w: %v", tts.ErrUnsupported, err)
		}
		if err != nil {
			return nil, err
		}
		return e, nil

	case tts.EngineGTTS:
		e, err := gtts.New(gtts.Config{
			Binary:            cfg.GTTS.Binary,
			RequestsPerMinute: cfg.GTTS.RequestsPerMinute,
			Timeout:           cfg.GTTS.Timeout,
		})
		if errors.Is(err, gtts.ErrBinaryNotFound) {
			return nil, fmt.Errorf("%w: %v", tts.ErrUnsupported, err)
		}
		if err != nil {
			return nil, err
		}
		return e, nil

	case tts.EngineYandex:
		e, err := yandex.New(yandex.Config{
			APIKey:   cfg.Yandex.APIKey,
			FolderID: cfg.Yandex.FolderID,
			Endpoint: cfg.Yandex.Endpoint,
			Model:    cfg.Yandex.Model,
			Timeout:  cfg.Yandex.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return e, nil

	case tts.EngineElevenLabs:
		e, err := elevenlabs.New(elevenlabs.Config{
			APIKey:   cfg.ElevenLabs.APIKey,
			ModelID:  cfg.ElevenLabs.ModelID,
			BaseURL:  cfg.ElevenLabs.BaseURL,
			Language: cfg.ElevenLabs.Language,
			Timeout:  cfg.ElevenLabs.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	return nil, fmt.Errorf("%w: unknown engine %q", tts.ErrInvalidConfig, cfg.Engine)
}
