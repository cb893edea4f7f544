package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Short:   "Check the key, region and voice against Azure",
	Long:    paragraph(fmt.Sprintf("\n%s the configuration by fetching the voice catalog of the configured region.", keyword("Validate"))),
	Example: paragraph("ttsgate validate\nTTSGATE_REGION=westeurope ttsgate validate"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var result *tts.ValidationResult

		engine, cleanup, err := newEngine(cfg)
		defer cleanup()
		if err != nil {
			result = &tts.ValidationResult{
				Error:    err,
				Guidance: guidance(err),
				Details:  map[string]string{"region": cfg.Region},
			}
		} else {
			result = tts.ValidateService(cmd.Context(), cfg, engine)
		}

		printValidation(os.Stdout, result)
		if !result.Available {
			return fmt.Errorf("validation failed: %v", result.Error)
		}
		return nil
	},
}

func printValidation(w io.Writer, r *tts.ValidationResult) {
	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %s\n", keyword(k), r.Details[k])
	}
	if r.Available {
		fmt.Fprintf(w, "\n  %s\n", keyword("Azure accepted the key."))
	}
	if r.Guidance != "" {
		fmt.Fprintf(w, "\n%s\n", paragraph(r.Guidance))
	}
}
