package nlu

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ---------------------------------------------------------------------------
// Entity types
// ---------------------------------------------------------------------------

// EntityKind classifies a recognized lexical fragment.
type EntityKind string

const (
	EntityMedicationName EntityKind = "medication_name"
	EntityDosage         EntityKind = "dosage"
	EntityFrequency      EntityKind = "frequency"
	EntityTime           EntityKind = "time"
	EntityDate           EntityKind = "date"
	EntityNumber         EntityKind = "number"
	EntityInstruction    EntityKind = "instruction"
)

// Span is a half-open [Start, End) byte-offset range into the normalised
// input text. End is always strictly greater than Start.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entity is a single recognized fragment of the input text.
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	Span       Span       `json:"span"`
}

// Per-kind match confidences. Known-medication matches score higher than
// generic pattern matches because the reference list comes from the user's
// own data.
const (
	knownMedicationConfidence = 0.9
	patternMatchConfidence    = 0.8
)

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// normalizeText applies Unicode NFC normalisation so that pattern matching
// and span offsets operate on a canonical representation of the input.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

// Extract scans text for medication names, dosages, times, frequencies and
// instruction keywords, returning every match as a typed, positioned,
// confidence-scored entity.
//
// knownMedications is the user's current medication name list; each name is
// matched whole-word and case-insensitively. Overlapping matches of
// different kinds are all retained; the same (kind, value) pair is reported
// at most once per call. The method is a pure function of its inputs and
// the engine's tables.
func (e *Engine) Extract(text string, knownMedications []string) []Entity {
	text = normalizeText(text)
	if strings.TrimSpace(text) == "" {
		return []Entity{}
	}

	entities := []Entity{}
	seen := map[string]struct{}{}

	add := func(kind EntityKind, value string, confidence float64, start, end int) {
		key := string(kind) + "\x00" + value
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, Entity{
			Kind:       kind,
			Value:      value,
			Confidence: confidence,
			Span:       Span{Start: start, End: end},
		})
	}

	for _, name := range knownMedications {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		re, err := wholeWordPattern(name)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			add(EntityMedicationName, text[loc[0]:loc[1]], knownMedicationConfidence, loc[0], loc[1])
		}
	}

	addPattern := func(kind EntityKind, re *regexp.Regexp) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			add(kind, text[loc[0]:loc[1]], patternMatchConfidence, loc[0], loc[1])
		}
	}

	addPattern(EntityDosage, e.tables.Dosage)
	addPattern(EntityTime, e.tables.ClockTime)
	addPattern(EntityTime, e.tables.DayPart)
	addPattern(EntityFrequency, e.tables.Frequency)
	addPattern(EntityInstruction, e.tables.Instruction)

	return entities
}

// wholeWordPattern compiles a case-insensitive whole-word matcher for the
// given literal name.
func wholeWordPattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// firstEntityOfKind returns the first entity of the given kind, or nil.
func firstEntityOfKind(entities []Entity, kind EntityKind) *Entity {
	for i := range entities {
		if entities[i].Kind == kind {
			return &entities[i]
		}
	}
	return nil
}
