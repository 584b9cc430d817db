package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careloop/medassist/internal/nlu"
)

// NewConflictsCmd creates the conflicts command.
func NewConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <candidate>",
		Short: "Check a candidate medication against the current list",
		Long:  "Checks a candidate medication name against the list given with\n--medications for known drug interactions and likely duplicates.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := nlu.NewEngine(nil)
			existing := medicationNames(sessionMedications())
			warnings := engine.CheckConflicts(args[0], existing)

			if rootOutput == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"candidate": args[0],
					"existing":  existing,
					"warnings":  warnings,
				})
			}

			out := cmd.OutOrStdout()
			if len(warnings) == 0 {
				fmt.Fprintf(out, "no conflicts found for %s\n", args[0])
				return nil
			}
			fmt.Fprintln(out, nlu.WarningsHeader)
			for _, w := range warnings {
				fmt.Fprintf(out, "• [%s/%s] %s %s\n", w.Category, w.Severity, w.Message, w.Recommendation)
			}
			return nil
		},
	}
}
