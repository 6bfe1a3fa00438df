package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/engines"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	voicesWait time.Duration
	voicesYAML bool

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the voices of the configured engine",
		Long: paragraph(fmt.Sprintf("\n%s the voices reported by the engine with their language and classified gender. "+
			"Use --lang and --gender to narrow the list the same way the control panel does.", keyword("List"))),
		Example: paragraph("voicedeck voices\nvoicedeck voices --engine gtts --lang es\nvoicedeck voices --gender female --yaml"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := tts.LoadConfigFromViper()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), voicesWait)
			defer cancel()

			vs, err := engines.ListVoices(ctx, cfg)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("lang") || flags.Changed("gender") {
				vs = voice.Filter(vs, cfg.Language, cfg.GenderFilter()).Candidates
			}

			if voicesYAML {
				return writeVoicesYAML(os.Stdout, vs)
			}
			return writeVoicesTable(os.Stdout, vs)
		},
	}
)

// voiceEntry is a voice as listed by the voices command.
type voiceEntry struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Language   string `yaml:"language"`
	Gender     string `yaml:"gender"`
}

func voiceEntries(vs []voice.Voice) []voiceEntry {
	entries := make([]voiceEntry, 0, len(vs))
	for _, v := range vs {
		entries = append(entries, voiceEntry{
			Name:       v.Name,
			Identifier: v.Identifier,
			Language:   v.LanguageTag,
			Gender:     voice.Classify(v).String(),
		})
	}
	return entries
}

func writeVoicesYAML(w io.Writer, vs []voice.Voice) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(voiceEntries(vs)); err != nil {
		return fmt.Errorf("unable to encode voices: %w", err)
	}
	return enc.Close()
}

var voicesHeaderStyle = lipgloss.NewStyle().Bold(true)

func writeVoicesTable(w io.Writer, vs []voice.Voice) error {
	entries := voiceEntries(vs)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No voices found.")
		return err
	}

	nameWidth, langWidth := len("NAME"), len("LANGUAGE")
	for _, e := range entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(e.Name))
		langWidth = max(langWidth, runewidth.StringWidth(e.Language))
	}
	nameWidth = min(nameWidth, 48)

	row := func(name, lang, gender string) string {
		return strings.Join([]string{
			runewidth.FillRight(runewidth.Truncate(name, nameWidth, "…"), nameWidth),
			runewidth.FillRight(lang, langWidth),
			gender,
		}, "  ")
	}

	if _, err := fmt.Fprintln(w, voicesHeaderStyle.Render(row("NAME", "LANGUAGE", "GENDER"))); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, row(e.Name, e.Language, e.Gender)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	voicesCmd.Flags().DurationVar(&voicesWait, "wait", 10*time.Second, "how long to wait for the engine to report voices")
	voicesCmd.Flags().BoolVar(&voicesYAML, "yaml", false, "print voices as YAML")
}
