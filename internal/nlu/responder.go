package nlu

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// User medication view
// ---------------------------------------------------------------------------

// UserMedication is the caller-supplied view of one active medication,
// carrying just the fields response templates describe. The engine never
// stores these between calls.
type UserMedication struct {
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Times        []string `json:"times,omitempty"`
}

// WarningsHeader is the fixed heading callers prepend to rendered conflict
// warnings.
const WarningsHeader = "⚠️ IMPORTANT WARNINGS"

// ---------------------------------------------------------------------------
// Response generation
// ---------------------------------------------------------------------------

// Respond renders a natural-language reply for a classified intent given the
// user's live medication list. Each intent kind has one template; when the
// named medication cannot be resolved against the list the reply degrades to
// a clarifying question and never echoes the unresolved name.
//
// Respond never appends conflict warnings itself; see AppendWarnings.
func (e *Engine) Respond(intent Intent, userMedications []UserMedication) string {
	name := intent.Parameters[ParamMedicationName]

	switch intent.Kind {
	case IntentCheckStatus:
		if med := resolveMedication(name, userMedications); med != nil {
			return describeSchedule(med)
		}
		return "Which medication would you like to check? You can ask me about any medication on your list."

	case IntentGetInfo:
		if med := resolveMedication(name, userMedications); med != nil {
			return describeMedication(med)
		}
		return "Which medication would you like to know more about?"

	case IntentMarkTaken:
		if name != "" {
			return fmt.Sprintf("Great, I've noted that you took your %s. Keeping up with your schedule makes a real difference.", name)
		}
		return "Which medication did you take?"

	case IntentAddMedication:
		return "Sure, let's add a medication. What is its name, the dosage, and when should you take it?"

	default:
		return "I can help you manage your medications: add new ones, check your schedule, " +
			"mark doses as taken or skipped, and answer questions about what you're taking."
	}
}

// AppendWarnings attaches rendered conflict warnings to a reply under the
// fixed warnings header, one bullet per warning. With no warnings the reply
// is returned unchanged.
func AppendWarnings(reply string, warnings []ConflictWarning) string {
	if len(warnings) == 0 {
		return reply
	}
	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n")
	b.WriteString(WarningsHeader)
	for _, w := range warnings {
		b.WriteString("\n• ")
		b.WriteString(w.Message)
		if w.Recommendation != "" {
			b.WriteString(" ")
			b.WriteString(w.Recommendation)
		}
	}
	return b.String()
}

// resolveMedication fuzzily matches a name against the user's list: exact
// case-insensitive match first, then substring containment in either
// direction. Returns nil when name is empty or nothing matches.
func resolveMedication(name string, meds []UserMedication) *UserMedication {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	for i := range meds {
		if strings.ToLower(meds[i].Name) == lower {
			return &meds[i]
		}
	}
	for i := range meds {
		medLower := strings.ToLower(meds[i].Name)
		if strings.Contains(medLower, lower) || strings.Contains(lower, medLower) {
			return &meds[i]
		}
	}
	return nil
}

func describeSchedule(med *UserMedication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You take %s", med.Name)
	if med.Dosage != "" {
		fmt.Fprintf(&b, " %s", med.Dosage)
	}
	if len(med.Times) > 0 {
		fmt.Fprintf(&b, ", scheduled at %s", strings.Join(med.Times, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func describeMedication(med *UserMedication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", med.Name)
	if med.Dosage != "" {
		fmt.Fprintf(&b, " is taken as %s", med.Dosage)
	} else {
		b.WriteString(" is on your medication list")
	}
	if med.Instructions != "" {
		fmt.Fprintf(&b, ", %s", strings.ToLower(med.Instructions))
	}
	if len(med.Times) > 0 {
		fmt.Fprintf(&b, ". Your schedule is %s", strings.Join(med.Times, ", "))
	}
	b.WriteString(".")
	return b.String()
}
