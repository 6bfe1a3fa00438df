package tts

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// Engine names accepted by the configuration.
const (
	EngineMock       = "mock"
	EnginePiper      = "piper"
	EngineGTTS       = "gtts"
	EngineYandex     = "yandex"
	EngineElevenLabs = "elevenlabs"
)

// Engines lists the supported engine names.
var Engines = []string{EnginePiper, EngineGTTS, EngineYandex, EngineElevenLabs, EngineMock}

// Config contains all TTS configuration options.
type Config struct {
	Engine string `yaml:"engine"`

	// Initial form values
	Language string  `yaml:"language"`
	Gender   string  `yaml:"gender"`
	Voice    string  `yaml:"voice"`
	Rate     float64 `yaml:"rate"`
	Pitch    float64 `yaml:"pitch"`
	Volume   float64 `yaml:"volume"`

	// Behaviour
	StripMarkdown bool          `yaml:"strip_markdown"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	SampleRate    int           `yaml:"sample_rate"`

	// Engine-specific configurations
	Piper      PiperConfig      `yaml:"piper"`
	GTTS       GTTSConfig       `yaml:"gtts"`
	Yandex     YandexConfig     `yaml:"yandex"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Mock       MockConfig       `yaml:"mock"`
}

// PiperConfig contains Piper engine settings.
type PiperConfig struct {
	Binary  string        `yaml:"binary"`
	DataDir string        `yaml:"data_dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// GTTSConfig contains gTTS engine settings.
type GTTSConfig struct {
	Binary            string        `yaml:"binary"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// YandexConfig contains Yandex SpeechKit settings.
type YandexConfig struct {
	APIKey   string        `yaml:"api_key"`
	FolderID string        `yaml:"folder_id"`
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ElevenLabsConfig contains ElevenLabs settings.
type ElevenLabsConfig struct {
	APIKey   string        `yaml:"api_key"`
	ModelID  string        `yaml:"model_id"`
	BaseURL  string        `yaml:"base_url"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MockConfig contains settings of the in-memory engine.
type MockConfig struct {
	VoiceDelay     time.Duration `yaml:"voice_delay"`
	WordsPerMinute int           `yaml:"words_per_minute"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:   EnginePiper,
		Language: voice.DefaultLanguage,
		Gender:   voice.AnyGender.String(),
		Voice:    DefaultVoice,
		Rate:     1.0,
		Pitch:    1.0,
		Volume:   1.0,

		PollInterval: DefaultPollInterval,
		SampleRate:   44100,

		Piper:      DefaultPiperConfig(),
		GTTS:       DefaultGTTSConfig(),
		Yandex:     DefaultYandexConfig(),
		ElevenLabs: DefaultElevenLabsConfig(),
		Mock:       DefaultMockConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	cfg := PiperConfig{
		Binary:  "piper",
		Timeout: 30 * time.Second,
	}

	// Common voice model locations
	switch runtime.GOOS {
	case "linux":
		cfg.DataDir = filepath.Join("/usr", "share", "piper-voices")
	case "darwin":
		cfg.DataDir = filepath.Join("/usr", "local", "share", "piper-voices")
	}

	return cfg
}

// DefaultGTTSConfig returns default gTTS configuration.
func DefaultGTTSConfig() GTTSConfig {
	return GTTSConfig{
		Binary:            "gtts-cli",
		RequestsPerMinute: 50,
		Timeout:           30 * time.Second,
	}
}

// DefaultYandexConfig returns default Yandex configuration.
func DefaultYandexConfig() YandexConfig {
	return YandexConfig{
		Endpoint: "tts.api.cloud.yandex.net:443",
		Model:    "general",
		Timeout:  15 * time.Second,
	}
}

// DefaultElevenLabsConfig returns default ElevenLabs configuration.
func DefaultElevenLabsConfig() ElevenLabsConfig {
	return ElevenLabsConfig{
		ModelID:  "eleven_multilingual_v2",
		BaseURL:  "https://api.elevenlabs.io",
		Language: "en-US",
		Timeout:  20 * time.Second,
	}
}

// DefaultMockConfig returns default mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		VoiceDelay:     300 * time.Millisecond,
		WordsPerMinute: 150,
	}
}

// Validate checks the configuration. Rate, pitch and volume are not range
// checked here: their ranges belong to the provider.
func (c Config) Validate() error {
	if !slices.Contains(Engines, c.Engine) {
		return fmt.Errorf("%w: unknown engine %q (valid: %v)", ErrInvalidConfig, c.Engine, Engines)
	}

	if _, ok := voice.LookupProfile(c.Language); !ok {
		return fmt.Errorf("%w: unsupported language %q (valid: %v)", ErrInvalidConfig, c.Language, voice.LanguageCodes())
	}

	if _, err := voice.ParseGenderFilter(c.Gender); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalidConfig, c.PollInterval)
	}

	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("%w: sample_rate must be 44100 or 48000, got %d", ErrInvalidConfig, c.SampleRate)
	}

	switch c.Engine {
	case EngineYandex:
		if c.Yandex.APIKey == "" || c.Yandex.FolderID == "" {
			return fmt.Errorf("%w: yandex engine needs api_key and folder_id", ErrMissingConfig)
		}
	case EngineElevenLabs:
		if c.ElevenLabs.APIKey == "" {
			return fmt.Errorf("%w: elevenlabs engine needs api_key", ErrMissingConfig)
		}
	case EngineGTTS:
		if c.GTTS.RequestsPerMinute <= 0 {
			return fmt.Errorf("%w: gtts requests_per_minute must be positive", ErrInvalidConfig)
		}
	}

	return nil
}

// GenderFilter returns the parsed gender filter, AnyGender when invalid.
func (c Config) GenderFilter() voice.GenderFilter {
	g, _ := voice.ParseGenderFilter(c.Gender)
	return g
}
