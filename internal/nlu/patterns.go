package nlu

import "regexp"

// TablesVersion identifies the revision of the built-in pattern and
// interaction data. Bump it whenever the lists below change so downstream
// consumers can tell which vocabulary produced a result.
const TablesVersion = "2025.08"

// ---------------------------------------------------------------------------
// Tables: the engine's static lexical knowledge
// ---------------------------------------------------------------------------

// CatalogEntry pairs a generic drug name with its common brand name.
type CatalogEntry struct {
	Generic string
	Brand   string
}

// TriggerSet binds an intent kind to the lowercase phrases that activate it.
// The order of TriggerSets in Tables.Triggers is the classification priority.
type TriggerSet struct {
	Kind    IntentKind
	Phrases []string
}

// Tables bundles every static pattern and lookup table the engine consults.
// A Tables value is immutable after construction and safe to share across
// goroutines; the engine holds exactly one.
type Tables struct {
	Version string

	// Compiled lexical patterns.
	Dosage      *regexp.Regexp
	ClockTime   *regexp.Regexp
	DayPart     *regexp.Regexp
	Frequency   *regexp.Regexp
	Instruction *regexp.Regexp

	// Heuristic: a capitalized word longer than three characters may be a
	// drug name the catalog does not know.
	CapitalizedWord *regexp.Regexp

	// SnoozeDuration captures "<number> <minutes|hours>" phrases.
	SnoozeDuration *regexp.Regexp

	// Catalog of known generic/brand drug name pairs.
	Catalog []CatalogEntry

	// Triggers is the intent trigger list in priority order; the first set
	// containing a matching phrase wins.
	Triggers []TriggerSet

	// Interactions maps a lowercase medication name to the lowercase
	// substances known to interact with it. Absence from this table means
	// "no known interaction", never "validated safe".
	Interactions map[string][]string
}

// DefaultTables returns the built-in pattern tables. The result should be
// constructed once at startup and shared; it is never mutated by the engine.
func DefaultTables() *Tables {
	return &Tables{
		Version: TablesVersion,

		Dosage: regexp.MustCompile(
			`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|g|ml|iu|units?|tablets?|capsules?|pills?|drops?|puffs?|sprays?)\b`),

		ClockTime: regexp.MustCompile(
			`(?i)\b(?:[01]?\d|2[0-3]):[0-5]\d\s?(?:am|pm)?\b|\b(?:1[0-2]|[1-9])\s?(?:am|pm)\b`),

		DayPart: regexp.MustCompile(
			`(?i)\b(?:morning|noon|afternoon|evening|night|bedtime|breakfast|lunch|dinner)\b`),

		Frequency: regexp.MustCompile(
			`(?i)\b(?:(?:once|twice|three times|four times)\s+(?:daily|a day|per day)|every\s+\d+\s+hours?|every\s+(?:morning|night|evening)|as\s+needed|with\s+meals|daily|weekly)\b`),

		Instruction: regexp.MustCompile(
			`(?i)\b(?:with food|without food|on an empty stomach|before meals?|after meals?|with water|avoid alcohol|do not crush)\b`),

		CapitalizedWord: regexp.MustCompile(`\b[A-Z][A-Za-z]{3,}\b`),

		SnoozeDuration: regexp.MustCompile(`(?i)\b(\d+)\s*(minutes?|mins?|hours?|hrs?)\b`),

		Catalog: []CatalogEntry{
			{Generic: "acetaminophen", Brand: "tylenol"},
			{Generic: "ibuprofen", Brand: "advil"},
			{Generic: "aspirin", Brand: "bayer"},
			{Generic: "metformin", Brand: "glucophage"},
			{Generic: "lisinopril", Brand: "prinivil"},
			{Generic: "atorvastatin", Brand: "lipitor"},
			{Generic: "simvastatin", Brand: "zocor"},
			{Generic: "levothyroxine", Brand: "synthroid"},
			{Generic: "omeprazole", Brand: "prilosec"},
			{Generic: "amlodipine", Brand: "norvasc"},
			{Generic: "metoprolol", Brand: "lopressor"},
			{Generic: "sertraline", Brand: "zoloft"},
			{Generic: "warfarin", Brand: "coumadin"},
			{Generic: "gabapentin", Brand: "neurontin"},
			{Generic: "losartan", Brand: "cozaar"},
			{Generic: "albuterol", Brand: "ventolin"},
			{Generic: "fluoxetine", Brand: "prozac"},
			{Generic: "prednisone", Brand: "deltasone"},
		},

		Triggers: []TriggerSet{
			{Kind: IntentAddMedication, Phrases: []string{
				"add medication", "add a medication", "new medication",
				"start taking", "need to add", "put me on",
				"prescribed me", "i was prescribed",
			}},
			{Kind: IntentCheckStatus, Phrases: []string{
				"did i take", "have i taken", "when do i take",
				"when should i take", "what medications am i",
				"my medication schedule", "what do i take",
			}},
			{Kind: IntentGetInfo, Phrases: []string{
				"what is", "tell me about", "information about",
				"side effects", "what does", "why do i take",
			}},
			{Kind: IntentMarkTaken, Phrases: []string{
				"i took", "just took", "i have taken",
				"mark as taken", "i already took",
			}},
			{Kind: IntentSkipDose, Phrases: []string{
				"skip", "skipping", "not take my", "don't want to take",
			}},
			{Kind: IntentSnooze, Phrases: []string{
				"snooze", "remind me later", "remind me in",
				"delay my reminder",
			}},
		},

		Interactions: map[string][]string{
			"warfarin":      {"aspirin", "ibuprofen", "naproxen", "vitamin k", "fluoxetine"},
			"aspirin":       {"warfarin", "ibuprofen", "methotrexate", "prednisone"},
			"ibuprofen":     {"warfarin", "aspirin", "lisinopril", "prednisone"},
			"metformin":     {"alcohol", "contrast dye"},
			"lisinopril":    {"potassium", "ibuprofen", "spironolactone"},
			"simvastatin":   {"grapefruit", "clarithromycin", "gemfibrozil", "amlodipine"},
			"levothyroxine": {"calcium", "iron", "antacid"},
			"omeprazole":    {"clopidogrel"},
			"sertraline":    {"tramadol", "st john's wort"},
			"fluoxetine":    {"tramadol", "warfarin"},
		},
	}
}
