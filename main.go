// Package main provides the entry point for the voicedeck CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/engines"
	"github.com/dgnsrekt/voicedeck/ui"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	mouse      bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "voicedeck [TEXT|FILE|-]",
		Short: "Speak text aloud from a terminal control panel",
		Long: paragraph(
			fmt.Sprintf("\nPick a language, gender and voice, then %s.", keyword("speak your text")),
		),
		Example: paragraph("voicedeck \"Hello there\"\nvoicedeck notes.md\necho hola | voicedeck --lang es"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(*cobra.Command) error {
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if g := viper.GetString("tts.gender"); g != "" {
		// accept "Female", "FEMALE" and friends on the command line
		viper.Set("tts.gender", strings.ToLower(g))
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// textFromArg returns the initial text. A "-" or a piped stdin is read to
// the end, an existing file is read from disk and anything else is taken
// literally.
func textFromArg(args []string) (string, error) {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return "", err
		} else if yes {
			arg = "-"
		}
	}

	switch {
	case arg == "":
		return "", nil
	case arg == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}

	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("unable to read file: %w", err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}

	return arg, nil
}

func execute(_ *cobra.Command, args []string) error {
	ttsCfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	text, err := textFromArg(args)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("voicedeck needs a terminal, try `voicedeck voices` for scripting")
	}

	return runTUI(ttsCfg, text)
}

func runTUI(ttsCfg tts.Config, text string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if _, ok := styles.DefaultStyles[cfg.GlamourStyle]; !ok && cfg.GlamourStyle != styles.AutoStyle {
		log.Warn("unknown glamour style, using auto", "style", cfg.GlamourStyle)
		cfg.GlamourStyle = styles.AutoStyle
	}

	cfg.Text = text
	cfg.Engine = ttsCfg.Engine
	cfg.EnableMouse = mouse

	provider, initErr := engines.New(ttsCfg)
	if initErr != nil && !errors.Is(initErr, tts.ErrUnsupported) {
		return fmt.Errorf("unable to start %s engine: %w", ttsCfg.Engine, initErr)
	}
	if initErr != nil {
		log.Warn("speech synthesis unsupported", "engine", ttsCfg.Engine, "err", initErr)
	}
	if provider != nil {
		defer func() {
			if err := provider.Close(); err != nil {
				log.Error("unable to close provider", "err", err)
			}
		}()
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, ttsCfg, provider, initErr).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	cobra.OnInitialize(loadExplicitConfig)

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("engine", "e", tts.EnginePiper, fmt.Sprintf("speech engine (%s)", strings.Join(tts.Engines, ", ")))
	flags.StringP("lang", "l", "", "initial language code, e.g. en, zh, es")
	flags.StringP("gender", "g", "", "initial gender filter (any, female, male)")
	flags.String("voice", "", "initial voice name")
	flags.Float64P("rate", "r", 0, "initial speech rate")
	flags.Float64("pitch", 0, "initial pitch")
	flags.Float64("volume", 0, "initial volume")
	flags.BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("tts.language", flags.Lookup("lang"))
	_ = viper.BindPFlag("tts.gender", flags.Lookup("gender"))
	_ = viper.BindPFlag("tts.voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("tts.rate", flags.Lookup("rate"))
	_ = viper.BindPFlag("tts.pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("tts.volume", flags.Lookup("volume"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	defaults := tts.DefaultConfig()
	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.language", defaults.Language)
	viper.SetDefault("tts.gender", defaults.Gender)
	viper.SetDefault("tts.rate", defaults.Rate)
	viper.SetDefault("tts.pitch", defaults.Pitch)
	viper.SetDefault("tts.volume", defaults.Volume)
	viper.SetDefault("tts.strip_markdown", true)

	rootCmd.AddCommand(configCmd, voicesCmd, manCmd)
}

// loadExplicitConfig reads the file given with --config, if any.
func loadExplicitConfig() {
	if configFile == "" || configFile == viper.ConfigFileUsed() {
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not parse configuration file", "path", configFile, "err", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	// A .env next to the working directory feeds API keys into the
	// environment before viper looks at it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not parse .env file", "err", err)
	}

	scope := gap.NewScope(gap.User, "voicedeck")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voicedeck")}, dirs...)
	}

	if c := os.Getenv("VOICEDECK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voicedeck")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voicedeck")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Provider credentials keep their conventional names.
	_ = viper.BindEnv("tts.yandex.api_key", "VOICEDECK_TTS_YANDEX_API_KEY", "YANDEX_API_KEY")
	_ = viper.BindEnv("tts.yandex.folder_id", "VOICEDECK_TTS_YANDEX_FOLDER_ID", "YANDEX_FOLDER_ID")
	_ = viper.BindEnv("tts.elevenlabs.api_key", "VOICEDECK_TTS_ELEVENLABS_API_KEY", "ELEVENLABS_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "voicedeck.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
