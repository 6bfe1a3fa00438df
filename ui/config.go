package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle string `env:"GLAMOUR_STYLE" envDefault:"auto"`
	EnableMouse  bool
	ShowHelp     bool `env:"VOICEDECK_SHOW_HELP"`
	TextHeight   int  `env:"VOICEDECK_TEXT_HEIGHT" envDefault:"6"`

	// Initial text from the command line or stdin. Empty means the sample
	// text of the selected language.
	Text string

	// Engine name shown in the title bar
	Engine string
}
