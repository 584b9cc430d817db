// Package cli implements the medassist command line interface. Every
// command runs the language engine in-process, so the CLI works without a
// running API server or any backing services.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/internal/nlu"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags shared by every subcommand.
var (
	rootLogLevel    string
	rootOutput      string
	rootMedications string
)

// NewRootCommand creates the root cobra command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "medassist",
		Short:         "medassist CLI, a rule-based medication assistant",
		Long:          "medassist understands plain-language requests about medications:\nadding them, checking whether doses were taken, and warning about\nknown drug interactions and likely duplicates.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&rootLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&rootOutput, "output", "o", "text", "output format (text, json)")
	pf.StringVarP(&rootMedications, "medications", "m", "", "comma-separated current medication list, e.g. \"Metformin 500mg,Aspirin\"")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewConflictsCmd(),
		NewChatCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// newCLILogger builds a console logger at the requested level.
func newCLILogger() logging.Logger {
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       rootLogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNopLogger()
	}
	return logger
}

// sessionMedications parses the --medications flag into the engine's view.
// Each entry is "Name" or "Name Dosage" where the dosage starts the first
// token containing a digit.
func sessionMedications() []nlu.UserMedication {
	var meds []nlu.UserMedication
	for _, entry := range strings.Split(rootMedications, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, dosage := splitNameDosage(entry)
		meds = append(meds, nlu.UserMedication{Name: name, Dosage: dosage})
	}
	return meds
}

func splitNameDosage(entry string) (name, dosage string) {
	fields := strings.Fields(entry)
	for i, f := range fields {
		if i > 0 && strings.IndexFunc(f, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			return strings.Join(fields[:i], " "), strings.Join(fields[i:], " ")
		}
	}
	return entry, ""
}

func medicationNames(meds []nlu.UserMedication) []string {
	names := make([]string, 0, len(meds))
	for _, m := range meds {
		names = append(names, m.Name)
	}
	return names
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
