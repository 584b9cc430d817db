package medication

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/careloop/medassist/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Clock values
// ─────────────────────────────────────────────────────────────────────────────

// Clock is a time-of-day without a date, minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h) or "H:MM am/pm" into a Clock.
func ParseClock(s string) (Clock, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Clock{}, errors.New(errors.ErrCodeValidation, "empty time")
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	var h, m int
	if strings.Contains(s, ":") {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return Clock{}, errors.Newf(errors.ErrCodeValidation, "invalid time %q", s)
		}
	} else {
		if _, err := fmt.Sscanf(s, "%d", &h); err != nil {
			return Clock{}, errors.Newf(errors.ErrCodeValidation, "invalid time %q", s)
		}
	}

	switch meridiem {
	case "am":
		if h < 1 || h > 12 {
			return Clock{}, errors.Newf(errors.ErrCodeValidation, "invalid 12h hour %d", h)
		}
		if h == 12 {
			h = 0
		}
	case "pm":
		if h < 1 || h > 12 {
			return Clock{}, errors.Newf(errors.ErrCodeValidation, "invalid 12h hour %d", h)
		}
		if h != 12 {
			h += 12
		}
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, errors.Newf(errors.ErrCodeValidation, "time %02d:%02d out of range", h, m)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// String renders the clock as zero-padded 24h "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// At anchors the clock to the date of ref in ref's location.
func (c Clock) At(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), c.Hour, c.Minute, 0, 0, ref.Location())
}

// normalizeTimes parses, canonicalizes, deduplicates and sorts schedule
// times. Unparseable entries are kept verbatim so Validate can reject them
// with a useful message.
func normalizeTimes(times []string) []string {
	if len(times) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(times))
	for _, raw := range times {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if c, err := ParseClock(s); err == nil {
			s = c.String()
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Due-dose computation
// ─────────────────────────────────────────────────────────────────────────────

// DueDose is one upcoming or pending scheduled intake.
type DueDose struct {
	Medication *Medication `json:"medication"`
	At         time.Time   `json:"at"`
}

// NextDue returns the medication's next scheduled dose at or after now, or
// the zero time if the medication has no schedule. Schedules roll over to
// the next day.
func (m *Medication) NextDue(now time.Time) time.Time {
	var best time.Time
	for _, tm := range m.Times {
		c, err := ParseClock(tm)
		if err != nil {
			continue
		}
		at := c.At(now)
		if at.Before(now) {
			at = at.AddDate(0, 0, 1)
		}
		if best.IsZero() || at.Before(best) {
			best = at
		}
	}
	return best
}

// DueWithin lists every dose of the given medications scheduled between now
// and now+window, soonest first. Inactive medications are skipped.
func DueWithin(meds []*Medication, now time.Time, window time.Duration) []DueDose {
	var due []DueDose
	horizon := now.Add(window)
	for _, m := range meds {
		if m == nil || !m.Active {
			continue
		}
		for _, tm := range m.Times {
			c, err := ParseClock(tm)
			if err != nil {
				continue
			}
			at := c.At(now)
			if at.Before(now) {
				at = at.AddDate(0, 0, 1)
			}
			if !at.After(horizon) {
				due = append(due, DueDose{Medication: m, At: at})
			}
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].At.Equal(due[j].At) {
			return due[i].Medication.Name < due[j].Medication.Name
		}
		return due[i].At.Before(due[j].At)
	})
	return due
}
