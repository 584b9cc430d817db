package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConflicts_InteractionDetection(t *testing.T) {
	e := testEngine()
	got := e.CheckConflicts("Aspirin", []string{"Warfarin"})

	require.NotEmpty(t, got)
	var interaction *ConflictWarning
	for i := range got {
		if got[i].Category == ConflictInteraction {
			interaction = &got[i]
		}
	}
	require.NotNil(t, interaction)
	assert.Equal(t, SeverityMedium, interaction.Severity)
	assert.Contains(t, interaction.Medications, "Aspirin")
	assert.Contains(t, interaction.Medications, "Warfarin")
	assert.NotEmpty(t, interaction.Recommendation)
}

func TestCheckConflicts_BothDirectionsFire(t *testing.T) {
	// warfarin lists aspirin and aspirin lists warfarin, so the pair yields
	// one warning per direction. That double-count is intentional.
	e := testEngine()
	got := e.CheckConflicts("Aspirin", []string{"Warfarin"})

	interactions := 0
	for _, w := range got {
		if w.Category == ConflictInteraction {
			interactions++
		}
	}
	assert.Equal(t, 2, interactions)
}

func TestCheckConflicts_OneSidedTable(t *testing.T) {
	// omeprazole lists clopidogrel but not vice versa; only one direction
	// fires.
	e := testEngine()
	got := e.CheckConflicts("Omeprazole", []string{"Clopidogrel"})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictInteraction, got[0].Category)
}

func TestCheckConflicts_SubstringMatch(t *testing.T) {
	// Interaction substances match anywhere inside the existing name, so a
	// branded or annotated entry still hits.
	e := testEngine()
	got := e.CheckConflicts("Warfarin", []string{"Baby Aspirin 81mg"})

	require.NotEmpty(t, got)
	assert.Equal(t, ConflictInteraction, got[0].Category)
}

func TestCheckConflicts_DuplicateDetection(t *testing.T) {
	e := testEngine()
	got := e.CheckConflicts("metformin", []string{"Metformin"})

	require.Len(t, got, 1)
	w := got[0]
	assert.Equal(t, ConflictDosage, w.Category)
	assert.Equal(t, SeverityHigh, w.Severity)
	assert.Equal(t, []string{"metformin", "Metformin"}, w.Medications)
}

func TestCheckConflicts_NearDuplicate(t *testing.T) {
	e := testEngine()
	got := e.CheckConflicts("Lisinoprol", []string{"Lisinopril"})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictDosage, got[0].Category)
}

func TestCheckConflicts_NoFalsePositive(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.CheckConflicts("Vitamin D", []string{"Metformin", "Warfarin"}))
}

func TestCheckConflicts_EmptyInputs(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.CheckConflicts("", []string{"Warfarin"}))
	assert.Empty(t, e.CheckConflicts("   ", []string{"Warfarin"}))
	assert.Empty(t, e.CheckConflicts("Aspirin", nil))
	assert.Empty(t, e.CheckConflicts("Aspirin", []string{"", "  "}))
}

func TestCheckConflicts_OneWarningPerExistingMedication(t *testing.T) {
	e := testEngine()
	got := e.CheckConflicts("Ibuprofen", []string{"Warfarin", "Lisinopril"})

	pairs := map[string]bool{}
	for _, w := range got {
		require.Len(t, w.Medications, 2)
		pairs[w.Medications[0]+"/"+w.Medications[1]] = true
	}
	// ibuprofen<->warfarin both directions, ibuprofen<->lisinopril both
	// directions.
	assert.Len(t, got, 4)
	assert.True(t, pairs["Ibuprofen/Warfarin"])
	assert.True(t, pairs["Warfarin/Ibuprofen"])
	assert.True(t, pairs["Ibuprofen/Lisinopril"])
	assert.True(t, pairs["Lisinopril/Ibuprofen"])
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("bogus").Rank())
}
