package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/medassist/internal/nlu"
)

// analyzeResult is the JSON shape of one analyze run.
type analyzeResult struct {
	Text        string                 `json:"text"`
	Intent      nlu.Intent             `json:"intent"`
	Medications []nlu.ParsedMedication `json:"medications"`
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Classify an utterance and extract medication candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			engine := nlu.NewEngine(nil)
			meds := sessionMedications()

			result := analyzeResult{
				Text:        text,
				Intent:      engine.Classify(text, medicationNames(meds)),
				Medications: engine.Parse(text),
			}

			if rootOutput == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return printAnalyzeText(cmd, result)
		},
	}
}

func printAnalyzeText(cmd *cobra.Command, result analyzeResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "intent:     %s (confidence %.2f)\n", result.Intent.Kind, result.Intent.Confidence)
	if len(result.Intent.Parameters) > 0 {
		fmt.Fprintln(out, "parameters:")
		for key, value := range result.Intent.Parameters {
			fmt.Fprintf(out, "  %s: %s\n", key, value)
		}
	}
	if len(result.Medications) == 0 {
		fmt.Fprintln(out, "no medication candidates found")
		return nil
	}
	fmt.Fprintln(out, "medications:")
	for _, m := range result.Medications {
		line := fmt.Sprintf("  %s", m.Name)
		if m.Dosage != "" {
			line += " " + m.Dosage
		}
		if m.Frequency != "" {
			line += ", " + m.Frequency
		}
		if len(m.Times) > 0 {
			line += " at " + strings.Join(m.Times, ", ")
		}
		fmt.Fprintf(out, "%s (confidence %.2f, %s)\n", line, m.Confidence, m.Source)
	}
	return nil
}
