package nlu

import "strings"

// ---------------------------------------------------------------------------
// Parsed medication types
// ---------------------------------------------------------------------------

// MatchSource records how a candidate medication name was found, so callers
// can distinguish catalog hits from the low-confidence capitalized-word
// heuristic.
type MatchSource string

const (
	MatchCatalog   MatchSource = "catalog"
	MatchHeuristic MatchSource = "heuristic"
)

// ParsedMedication is a candidate medication description extracted from free
// text. Values are never mutated after return.
type ParsedMedication struct {
	Name         string      `json:"name"`
	Dosage       string      `json:"dosage,omitempty"`
	Frequency    string      `json:"frequency,omitempty"`
	Instructions string      `json:"instructions,omitempty"`
	Times        []string    `json:"times,omitempty"`
	Confidence   float64     `json:"confidence"`
	Source       MatchSource `json:"source"`
}

// Confidence scoring for parsed medications: every candidate starts at the
// base value and earns a bonus per successfully attached attribute.
const (
	parseBaseConfidence  = 0.8
	dosageBonus          = 0.1
	frequencyBonus       = 0.05
	timesBonus           = 0.05
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse extracts zero or more structured medication descriptions from free
// text. Candidate names come from the drug catalog (word-boundary,
// case-insensitive) and from the capitalized-word heuristic; the resulting
// set is deduplicated case-insensitively with catalog hits taking precedence.
//
// Dosage, frequency, times and instructions are extracted once from the
// whole input and attached to every candidate found in the same call. When
// one utterance names several medications they therefore all receive the
// same attributes, even if those were stated for only one of them; callers
// that need per-medication attribution must ask the user to clarify.
func (e *Engine) Parse(text string) []ParsedMedication {
	text = normalizeText(text)
	if strings.TrimSpace(text) == "" {
		return []ParsedMedication{}
	}

	type candidate struct {
		name   string
		source MatchSource
	}
	var candidates []candidate
	seen := map[string]struct{}{}

	addCandidate := func(name string, source MatchSource) {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, candidate{name: name, source: source})
	}

	// Catalog names first so a catalog hit wins over the heuristic seeing
	// the same word.
	for _, entry := range e.tables.Catalog {
		for _, name := range []string{entry.Generic, entry.Brand} {
			re, err := wholeWordPattern(name)
			if err != nil {
				continue
			}
			if m := re.FindString(text); m != "" {
				addCandidate(m, MatchCatalog)
			}
		}
	}

	for _, word := range e.tables.CapitalizedWord.FindAllString(text, -1) {
		addCandidate(word, MatchHeuristic)
	}

	if len(candidates) == 0 {
		return []ParsedMedication{}
	}

	dosage := e.tables.Dosage.FindString(text)
	frequency := e.tables.Frequency.FindString(text)
	instruction := e.tables.Instruction.FindString(text)

	var times []string
	times = append(times, e.tables.ClockTime.FindAllString(text, -1)...)
	times = append(times, e.tables.DayPart.FindAllString(text, -1)...)

	meds := make([]ParsedMedication, 0, len(candidates))
	for _, c := range candidates {
		med := ParsedMedication{
			Name:       c.name,
			Source:     c.source,
			Confidence: parseBaseConfidence,
		}
		if dosage != "" {
			med.Dosage = dosage
			med.Confidence += dosageBonus
		}
		if frequency != "" {
			med.Frequency = frequency
			med.Confidence += frequencyBonus
		}
		if len(times) > 0 {
			med.Times = append([]string(nil), times...)
			med.Confidence += timesBonus
		}
		med.Instructions = instruction
		meds = append(meds, med)
	}
	return meds
}
