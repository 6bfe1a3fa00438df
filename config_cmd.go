package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# mouse support
mouse: false
# write debug output to the log file
debug: false

tts:
  # speech engine: piper, gtts, yandex, elevenlabs or mock
  engine: "piper"
  # initial form values
  language: "en"
  gender: "any"
  # voice: "en_US-lessac-medium"
  rate: 1.0
  pitch: 1.0
  volume: 1.0
  # read markdown source as plain text
  strip_markdown: true
  # delay between voice list polls while the engine loads
  poll_interval: "100ms"
  # audio output rate: 44100 or 48000
  sample_rate: 44100

  piper:
    binary: "piper"
    # data_dir: "~/.local/share/piper-voices"
    timeout: "30s"

  gtts:
    binary: "gtts-cli"
    requests_per_minute: 50
    timeout: "30s"

  yandex:
    # api_key: "" (or YANDEX_API_KEY)
    # folder_id: "" (or YANDEX_FOLDER_ID)
    endpoint: "tts.api.cloud.yandex.net:443"
    model: "general"
    timeout: "15s"

  elevenlabs:
    # api_key: "" (or ELEVENLABS_API_KEY)
    model_id: "eleven_multilingual_v2"
    language: "en-US"
    timeout: "20s"

  mock:
    voice_delay: "300ms"
    words_per_minute: 150
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voicedeck config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voicedeck config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voicedeck config\nvoicedeck config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voicedeck", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
