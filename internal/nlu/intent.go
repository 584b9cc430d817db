package nlu

import "strings"

// ---------------------------------------------------------------------------
// Intent types
// ---------------------------------------------------------------------------

// IntentKind is the classified purpose of one user utterance.
type IntentKind string

const (
	IntentAddMedication   IntentKind = "add_medication"
	IntentCheckStatus     IntentKind = "check_status"
	IntentGetInfo         IntentKind = "get_info"
	IntentMarkTaken       IntentKind = "mark_taken"
	IntentSkipDose        IntentKind = "skip_dose"
	IntentSnooze          IntentKind = "snooze"
	IntentGeneralQuestion IntentKind = "general_question"
	IntentUnknown         IntentKind = "unknown"
)

// Parameter keys populated per intent kind.
const (
	ParamMedicationName = "medicationName"
	ParamDosage         = "dosage"
	ParamTimes          = "times"
	ParamDuration       = "duration"
	ParamUnit           = "unit"
)

// Intent is the result of classifying one utterance. Entities always carries
// the full extractor output for the same text, not just the parameters the
// intent kind consumes.
type Intent struct {
	Kind       IntentKind        `json:"kind"`
	Confidence float64           `json:"confidence"`
	Entities   []Entity          `json:"entities"`
	Parameters map[string]string `json:"parameters"`
}

// Classification confidences: a trigger match is always reported at the same
// fixed confidence regardless of which or how many phrases matched; the
// fallback path scores lower.
const (
	triggerMatchConfidence = 0.8
	fallbackConfidence     = 0.5
)

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Classify determines the intent of an utterance. Trigger sets are tested in
// the fixed priority order declared in the tables; the first set containing
// any matching phrase wins. When nothing matches, the classification falls
// back to get_info if the extractor found a known medication name in the
// text, and to general_question otherwise.
func (e *Engine) Classify(text string, knownMedications []string) Intent {
	normalized := normalizeText(text)
	lower := strings.ToLower(normalized)
	entities := e.Extract(normalized, knownMedications)

	for _, set := range e.tables.Triggers {
		for _, phrase := range set.Phrases {
			if strings.Contains(lower, phrase) {
				return Intent{
					Kind:       set.Kind,
					Confidence: triggerMatchConfidence,
					Entities:   entities,
					Parameters: e.deriveParameters(set.Kind, normalized, entities),
				}
			}
		}
	}

	kind := IntentGeneralQuestion
	if firstEntityOfKind(entities, EntityMedicationName) != nil {
		kind = IntentGetInfo
	}
	return Intent{
		Kind:       kind,
		Confidence: fallbackConfidence,
		Entities:   entities,
		Parameters: e.deriveParameters(kind, normalized, entities),
	}
}

// deriveParameters builds the per-kind parameter map from the extracted
// entities, pulling the first entity of each relevant kind. Snooze durations
// are parsed directly from the text since the extractor has no duration kind.
func (e *Engine) deriveParameters(kind IntentKind, text string, entities []Entity) map[string]string {
	params := map[string]string{}

	setFromEntity := func(key string, entityKind EntityKind) {
		if ent := firstEntityOfKind(entities, entityKind); ent != nil {
			params[key] = ent.Value
		}
	}

	switch kind {
	case IntentAddMedication:
		setFromEntity(ParamMedicationName, EntityMedicationName)
		setFromEntity(ParamDosage, EntityDosage)
		setFromEntity(ParamTimes, EntityTime)
	case IntentCheckStatus, IntentGetInfo, IntentMarkTaken, IntentSkipDose:
		setFromEntity(ParamMedicationName, EntityMedicationName)
	case IntentSnooze:
		if m := e.tables.SnoozeDuration.FindStringSubmatch(text); m != nil {
			params[ParamDuration] = m[1]
			params[ParamUnit] = canonicalSnoozeUnit(m[2])
		}
	}
	return params
}

// canonicalSnoozeUnit maps the matched unit spelling to "minutes" or "hours".
func canonicalSnoozeUnit(unit string) string {
	if strings.HasPrefix(strings.ToLower(unit), "h") {
		return "hours"
	}
	return "minutes"
}
