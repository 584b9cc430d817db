package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyInput(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.Parse(""))
	assert.Empty(t, e.Parse("   \n\t "))
}

func TestParse_DosageExtraction(t *testing.T) {
	e := testEngine()
	got := e.Parse("I need to take Aspirin 325mg twice daily")

	require.Len(t, got, 1)
	med := got[0]
	assert.Equal(t, "aspirin", strings.ToLower(med.Name))
	assert.Equal(t, "325mg", med.Dosage)
	assert.Contains(t, med.Frequency, "twice daily")
	assert.Greater(t, med.Confidence, 0.5)
	assert.Equal(t, MatchCatalog, med.Source)
}

func TestParse_HeuristicName(t *testing.T) {
	e := testEngine()
	got := e.Parse("remind me about Xarelto 20mg at dinner")

	require.NotEmpty(t, got)
	var found *ParsedMedication
	for i := range got {
		if got[i].Name == "Xarelto" {
			found = &got[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, MatchHeuristic, found.Source)
	assert.Equal(t, "20mg", found.Dosage)
	assert.Equal(t, []string{"dinner"}, found.Times)
}

func TestParse_CatalogWinsOverHeuristic(t *testing.T) {
	e := testEngine()
	got := e.Parse("Start Metformin tomorrow")

	var metformin *ParsedMedication
	for i := range got {
		if strings.ToLower(got[i].Name) == "metformin" {
			metformin = &got[i]
		}
	}
	require.NotNil(t, metformin)
	assert.Equal(t, MatchCatalog, metformin.Source)
}

func TestParse_AttributesAttachToEveryName(t *testing.T) {
	// A known imprecision: attributes extracted from the whole utterance are
	// attached to every medication found in it.
	e := testEngine()
	got := e.Parse("take aspirin and metformin 500mg twice daily")

	require.Len(t, got, 2)
	for _, med := range got {
		assert.Equal(t, "500mg", med.Dosage, med.Name)
		assert.Contains(t, med.Frequency, "twice daily", med.Name)
	}
}

func TestParse_ConfidenceScoring(t *testing.T) {
	e := testEngine()
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"base_only", "is aspirin ok", 0.8},
		{"with_dosage", "aspirin 100mg", 0.9},
		{"dosage_and_frequency", "aspirin 100mg twice daily", 0.95},
		{"all_attributes", "aspirin 100mg twice daily at 8am", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Parse(tt.text)
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want, got[0].Confidence, 1e-9)
		})
	}
}

func TestParse_ConfidenceBounds(t *testing.T) {
	e := testEngine()
	got := e.Parse("Aspirin and Tylenol 500mg twice daily at 9am with food before meals")
	require.NotEmpty(t, got)
	for _, med := range got {
		assert.GreaterOrEqual(t, med.Confidence, 0.8)
		assert.LessOrEqual(t, med.Confidence, 1.05)
	}
}

func TestParse_DeduplicatesNames(t *testing.T) {
	e := testEngine()
	got := e.Parse("Aspirin, aspirin, and more Aspirin")
	assert.Len(t, got, 1)
}

func TestParse_NoMedication(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.Parse("how are you today"))
}

func TestParse_Deterministic(t *testing.T) {
	e := testEngine()
	text := "take Aspirin and Metformin 500mg twice daily at 8am"
	first := e.Parse(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Parse(text))
	}
}
