package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/internal/nlu"
)

// NewChatCmd creates the interactive chat command.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive assistant session",
		Long:  "Starts a read-eval loop against the language engine. Medications\nadded during the session stay in memory until the session ends.\nType \"exit\" or \"quit\" to leave.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd)
		},
	}
}

func runChat(cmd *cobra.Command) error {
	engine := nlu.NewEngine(nil)
	logger := newCLILogger()
	meds := sessionMedications()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "medassist interactive session. Type \"exit\" to leave.")
	if len(meds) > 0 {
		fmt.Fprintf(out, "current medications: %s\n", strings.Join(medicationNames(meds), ", "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			fmt.Fprintln(out, "bye")
			return nil
		}

		reply, updated := chatTurn(engine, logger, text, meds)
		meds = updated
		fmt.Fprintln(out, reply)
	}
}

// chatTurn runs one utterance through the engine against the in-memory
// medication list and returns the reply plus the possibly-extended list.
func chatTurn(engine *nlu.Engine, logger logging.Logger, text string, meds []nlu.UserMedication) (string, []nlu.UserMedication) {
	names := medicationNames(meds)
	intent := engine.Classify(text, names)
	logger.Debug("classified utterance",
		logging.String("intent", string(intent.Kind)),
		logging.Float64("confidence", intent.Confidence))

	var warnings []nlu.ConflictWarning
	if intent.Kind == nlu.IntentAddMedication {
		for _, candidate := range engine.Parse(text) {
			warnings = append(warnings, engine.CheckConflicts(candidate.Name, names)...)
			meds = append(meds, nlu.UserMedication{
				Name:   candidate.Name,
				Dosage: candidate.Dosage,
				Times:  candidate.Times,
			})
		}
	}

	reply := engine.Respond(intent, meds)
	return nlu.AppendWarnings(reply, warnings), meds
}
