package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMedications() []UserMedication {
	return []UserMedication{
		{Name: "Metformin", Dosage: "500mg", Instructions: "Take with food", Times: []string{"8:00 am", "6:00 pm"}},
		{Name: "Lisinopril", Dosage: "10mg", Times: []string{"morning"}},
		{Name: "Vitamin D"},
	}
}

func TestRespond_CheckStatusResolved(t *testing.T) {
	e := testEngine()
	intent := Intent{
		Kind:       IntentCheckStatus,
		Parameters: map[string]string{ParamMedicationName: "metformin"},
	}
	got := e.Respond(intent, sampleMedications())

	assert.Contains(t, got, "Metformin")
	assert.Contains(t, got, "500mg")
	assert.Contains(t, got, "8:00 am")
}

func TestRespond_CheckStatusUnresolved(t *testing.T) {
	e := testEngine()
	intent := Intent{
		Kind:       IntentCheckStatus,
		Parameters: map[string]string{ParamMedicationName: "UnknownMed"},
	}
	got := e.Respond(intent, sampleMedications())

	require.NotEmpty(t, got)
	assert.NotContains(t, got, "UnknownMed")
	assert.Contains(t, got, "Which medication")
}

func TestRespond_GetInfoResolved(t *testing.T) {
	e := testEngine()
	intent := Intent{
		Kind:       IntentGetInfo,
		Parameters: map[string]string{ParamMedicationName: "Metformin"},
	}
	got := e.Respond(intent, sampleMedications())

	assert.Contains(t, got, "Metformin")
	assert.Contains(t, got, "500mg")
	assert.Contains(t, got, "take with food")
}

func TestRespond_GetInfoUnresolved(t *testing.T) {
	e := testEngine()
	intent := Intent{Kind: IntentGetInfo, Parameters: map[string]string{}}
	got := e.Respond(intent, sampleMedications())

	assert.Equal(t, "Which medication would you like to know more about?", got)
}

func TestRespond_ResolvesBySubstring(t *testing.T) {
	e := testEngine()
	intent := Intent{
		Kind:       IntentCheckStatus,
		Parameters: map[string]string{ParamMedicationName: "vitamin"},
	}
	got := e.Respond(intent, sampleMedications())

	assert.Contains(t, got, "Vitamin D")
}

func TestRespond_MarkTaken(t *testing.T) {
	e := testEngine()

	withName := Intent{
		Kind:       IntentMarkTaken,
		Parameters: map[string]string{ParamMedicationName: "Lisinopril"},
	}
	got := e.Respond(withName, sampleMedications())
	assert.Contains(t, got, "Lisinopril")

	withoutName := Intent{Kind: IntentMarkTaken, Parameters: map[string]string{}}
	got = e.Respond(withoutName, sampleMedications())
	assert.Equal(t, "Which medication did you take?", got)
}

func TestRespond_AddMedicationPrompt(t *testing.T) {
	e := testEngine()
	got := e.Respond(Intent{Kind: IntentAddMedication, Parameters: map[string]string{}}, nil)

	assert.Contains(t, got, "name")
	assert.Contains(t, got, "dosage")
}

func TestRespond_FallbackDescribesCapabilities(t *testing.T) {
	e := testEngine()
	for _, kind := range []IntentKind{IntentGeneralQuestion, IntentUnknown, IntentSkipDose, IntentSnooze} {
		got := e.Respond(Intent{Kind: kind, Parameters: map[string]string{}}, nil)
		assert.Contains(t, got, "medications", string(kind))
	}
}

func TestRespond_NilParameters(t *testing.T) {
	e := testEngine()
	got := e.Respond(Intent{Kind: IntentCheckStatus}, sampleMedications())
	assert.NotEmpty(t, got)
}

func TestAppendWarnings(t *testing.T) {
	warnings := []ConflictWarning{
		{
			Category:       ConflictInteraction,
			Severity:       SeverityMedium,
			Message:        "Aspirin may interact with Warfarin.",
			Recommendation: "Talk to your doctor or pharmacist before taking these together.",
		},
		{
			Category: ConflictDosage,
			Severity: SeverityHigh,
			Message:  "Possible duplicate.",
		},
	}
	got := AppendWarnings("Noted.", warnings)

	assert.True(t, strings.HasPrefix(got, "Noted.\n\n"+WarningsHeader))
	assert.Contains(t, got, "\n• Aspirin may interact with Warfarin. Talk to your doctor")
	assert.Contains(t, got, "\n• Possible duplicate.")
	assert.Equal(t, 2, strings.Count(got, "•"))
}

func TestAppendWarnings_NoWarnings(t *testing.T) {
	assert.Equal(t, "All good.", AppendWarnings("All good.", nil))
	assert.Equal(t, "All good.", AppendWarnings("All good.", []ConflictWarning{}))
}
