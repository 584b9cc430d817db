package nlu

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Conflict warning types
// ---------------------------------------------------------------------------

// ConflictCategory classifies the kind of safety concern a warning reports.
type ConflictCategory string

const (
	ConflictInteraction ConflictCategory = "interaction"
	ConflictTiming      ConflictCategory = "timing"
	ConflictDosage      ConflictCategory = "dosage"
	ConflictAllergy     ConflictCategory = "allergy"
)

// Severity ranks how serious a conflict warning is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordinal position of the severity, low < medium < high <
// critical. Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ConflictWarning is a detected safety concern for a candidate medication
// against one medication on the user's existing list.
type ConflictWarning struct {
	Category       ConflictCategory `json:"category"`
	Severity       Severity         `json:"severity"`
	Message        string           `json:"message"`
	Recommendation string           `json:"recommendation"`
	Medications    []string         `json:"medications"`
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// CheckConflicts cross-references a candidate medication name against the
// user's existing medication names and returns every warning the rule set
// produces, one per existing medication per rule.
//
// Two rules fire interaction warnings: the candidate's interaction list may
// name a substance contained in an existing medication's name, and an
// existing medication's interaction list may name a substance contained in
// the candidate. Both directions are checked independently, so one true
// interaction can yield two warnings. A third rule flags probable duplicates
// when the case-folded name similarity reaches DuplicateThreshold.
//
// An empty result means no rule fired; it is not evidence that the candidate
// is safe, only that the static table knows nothing about it.
func (e *Engine) CheckConflicts(candidateName string, existingMedications []string) []ConflictWarning {
	warnings := []ConflictWarning{}

	candidate := strings.TrimSpace(candidateName)
	if candidate == "" {
		return warnings
	}
	candLower := strings.ToLower(candidate)

	for _, existing := range existingMedications {
		existing = strings.TrimSpace(existing)
		if existing == "" {
			continue
		}
		existLower := strings.ToLower(existing)

		// Candidate's interaction list against the existing medication.
		for _, substance := range e.tables.Interactions[candLower] {
			if strings.Contains(existLower, substance) {
				warnings = append(warnings, interactionWarning(candidate, existing))
			}
		}

		// Existing medication's interaction list against the candidate.
		for _, substance := range e.tables.Interactions[existLower] {
			if strings.Contains(candLower, substance) {
				warnings = append(warnings, interactionWarning(existing, candidate))
			}
		}

		if Similarity(candLower, existLower) >= DuplicateThreshold {
			warnings = append(warnings, ConflictWarning{
				Category: ConflictDosage,
				Severity: SeverityHigh,
				Message: fmt.Sprintf("%s is very similar to %s, which is already on your list, and may be a duplicate.",
					candidate, existing),
				Recommendation: "Check whether this is the same medication before adding it, to avoid doubling a dose.",
				Medications:    []string{candidate, existing},
			})
		}
	}
	return warnings
}

func interactionWarning(source, other string) ConflictWarning {
	return ConflictWarning{
		Category: ConflictInteraction,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("%s may interact with %s.", source, other),
		Recommendation: "Talk to your doctor or pharmacist before taking these together.",
		Medications:    []string{source, other},
	}
}
