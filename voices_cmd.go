package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

var (
	voicesFilter string
	voicesJSON   bool

	voicesCmd = &cobra.Command{
		Use:     "voices [LANGUAGE]",
		Short:   "List the voices of the configured region",
		Long:    paragraph(fmt.Sprintf("\n%s the voices available in the configured region, optionally limited to a language such as it or it-IT.", keyword("List"))),
		Example: paragraph("ttsgate voices\nttsgate voices en-GB\nttsgate voices --filter jenny"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runVoices,
	}
)

func init() {
	voicesCmd.Flags().StringVar(&voicesFilter, "filter", "", "fuzzy-match voice names")
	voicesCmd.Flags().BoolVar(&voicesJSON, "json", false, "print the catalog as JSON")
}

func runVoices(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	voices, err := engine.Voices(cmd.Context())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		voices = tts.VoicesForLanguage(voices, tts.ResolveLocale(voices, args[0]))
	}
	if voicesFilter != "" {
		voices = filterVoices(voices, voicesFilter)
	}

	if voicesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(voices)
	}

	fmt.Print(renderVoices(voices))
	return nil
}

// voiceSource adapts a catalog for fuzzy matching.
type voiceSource []tts.Voice

func (s voiceSource) String(i int) string { return s[i].ShortName + " " + s[i].Label() }
func (s voiceSource) Len() int            { return len(s) }

// filterVoices returns the voices matching pattern, best match first.
func filterVoices(voices []tts.Voice, pattern string) []tts.Voice {
	matches := fuzzy.FindFrom(pattern, voiceSource(voices))
	out := make([]tts.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

const stylesWidth = 40

func renderVoices(voices []tts.Voice) string {
	nameWidth := 0
	for _, v := range voices {
		if w := lipgloss.Width(v.ShortName); w > nameWidth {
			nameWidth = w
		}
	}
	name := lipgloss.NewStyle().Width(nameWidth + 2)
	label := lipgloss.NewStyle().Width(24)

	var b strings.Builder
	for _, v := range voices {
		b.WriteString(name.Render(keyword(v.ShortName)))
		b.WriteString(label.Render(v.Label()))
		if len(v.StyleList) > 0 {
			b.WriteString(faint(truncate.StringWithTail(strings.Join(v.StyleList, ", "), stylesWidth, "…")))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n", faint(humanize.Comma(int64(len(voices)))+" voices"))
	return b.String()
}
