package tts

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads TTS configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.Engine, "tts.engine")
	setString(&cfg.Language, "tts.language")
	setString(&cfg.Gender, "tts.gender")
	setString(&cfg.Voice, "tts.voice")
	setFloat(&cfg.Rate, "tts.rate")
	setFloat(&cfg.Pitch, "tts.pitch")
	setFloat(&cfg.Volume, "tts.volume")

	if viper.IsSet("tts.strip_markdown") {
		cfg.StripMarkdown = viper.GetBool("tts.strip_markdown")
	}
	if viper.IsSet("tts.poll_interval") {
		cfg.PollInterval = viper.GetDuration("tts.poll_interval")
	}
	if viper.IsSet("tts.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.sample_rate")
	}

	// Piper
	setString(&cfg.Piper.Binary, "tts.piper.binary")
	setString(&cfg.Piper.DataDir, "tts.piper.data_dir")
	setDuration(&cfg.Piper.Timeout, "tts.piper.timeout")
	if dir, err := homedir.Expand(cfg.Piper.DataDir); err == nil {
		cfg.Piper.DataDir = dir
	}

	// gTTS
	setString(&cfg.GTTS.Binary, "tts.gtts.binary")
	if viper.IsSet("tts.gtts.requests_per_minute") {
		cfg.GTTS.RequestsPerMinute = viper.GetInt("tts.gtts.requests_per_minute")
	}
	setDuration(&cfg.GTTS.Timeout, "tts.gtts.timeout")

	// Yandex
	setString(&cfg.Yandex.APIKey, "tts.yandex.api_key")
	setString(&cfg.Yandex.FolderID, "tts.yandex.folder_id")
	setString(&cfg.Yandex.Endpoint, "tts.yandex.endpoint")
	setString(&cfg.Yandex.Model, "tts.yandex.model")
	setDuration(&cfg.Yandex.Timeout, "tts.yandex.timeout")

	// ElevenLabs
	setString(&cfg.ElevenLabs.APIKey, "tts.elevenlabs.api_key")
	setString(&cfg.ElevenLabs.ModelID, "tts.elevenlabs.model_id")
	setString(&cfg.ElevenLabs.BaseURL, "tts.elevenlabs.base_url")
	setString(&cfg.ElevenLabs.Language, "tts.elevenlabs.language")
	setDuration(&cfg.ElevenLabs.Timeout, "tts.elevenlabs.timeout")

	// Mock
	setDuration(&cfg.Mock.VoiceDelay, "tts.mock.voice_delay")
	if viper.IsSet("tts.mock.words_per_minute") {
		cfg.Mock.WordsPerMinute = viper.GetInt("tts.mock.words_per_minute")
	}

	// Validate the loaded configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if viper.IsSet(key) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
}

func setFloat(dst *float64, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetFloat64(key)
	}
}

func setDuration(dst *time.Duration, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetDuration(key)
	}
}
