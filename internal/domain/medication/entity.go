// Package medication implements the medication bounded context: the
// Medication aggregate, dose events, and schedule arithmetic. Business rules
// about what a valid medication record is live here; persistence is handled
// by the repository implementations under internal/infrastructure.
package medication

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/medassist/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Medication aggregate
// ─────────────────────────────────────────────────────────────────────────────

const (
	maxNameLength         = 200
	maxDosageLength       = 100
	maxInstructionsLength = 500
)

// Medication is one active or archived medication on a user's list.
type Medication struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage,omitempty"`
	Frequency    string     `json:"frequency,omitempty"`
	Instructions string     `json:"instructions,omitempty"`

	// Times holds the scheduled intake times as "HH:MM" strings in the
	// user's local day, sorted ascending.
	Times []string `json:"times,omitempty"`

	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NewMedication builds a valid active medication for a user. Name is
// required; everything else is optional.
func NewMedication(userID uuid.UUID, name, dosage, frequency, instructions string, times []string) (*Medication, error) {
	m := &Medication{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Dosage:       strings.TrimSpace(dosage),
		Frequency:    strings.TrimSpace(frequency),
		Instructions: strings.TrimSpace(instructions),
		Times:        normalizeTimes(times),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	m.UpdatedAt = m.CreatedAt
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate enforces the aggregate's invariants.
func (m *Medication) Validate() error {
	if m.UserID == uuid.Nil {
		return errors.New(errors.ErrCodeValidation, "userId is required")
	}
	if m.Name == "" {
		return errors.New(errors.ErrCodeMedicationNameInvalid, "medication name is required")
	}
	if len(m.Name) > maxNameLength {
		return errors.Newf(errors.ErrCodeMedicationNameInvalid, "medication name exceeds %d characters", maxNameLength)
	}
	if len(m.Dosage) > maxDosageLength {
		return errors.Newf(errors.ErrCodeValidation, "dosage exceeds %d characters", maxDosageLength)
	}
	if len(m.Instructions) > maxInstructionsLength {
		return errors.Newf(errors.ErrCodeValidation, "instructions exceed %d characters", maxInstructionsLength)
	}
	for _, tm := range m.Times {
		if _, err := ParseClock(tm); err != nil {
			return err
		}
	}
	return nil
}

// Update applies new attribute values and bumps UpdatedAt. Empty strings
// leave the current value in place; a non-nil empty times slice clears the
// schedule.
func (m *Medication) Update(dosage, frequency, instructions string, times []string) error {
	if dosage != "" {
		m.Dosage = strings.TrimSpace(dosage)
	}
	if frequency != "" {
		m.Frequency = strings.TrimSpace(frequency)
	}
	if instructions != "" {
		m.Instructions = strings.TrimSpace(instructions)
	}
	if times != nil {
		m.Times = normalizeTimes(times)
	}
	m.UpdatedAt = time.Now().UTC()
	return m.Validate()
}

// Deactivate archives the medication without deleting its dose history.
func (m *Medication) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now().UTC()
}

// ─────────────────────────────────────────────────────────────────────────────
// Dose events
// ─────────────────────────────────────────────────────────────────────────────

// DoseStatus is the recorded outcome of one scheduled dose.
type DoseStatus string

const (
	DoseTaken   DoseStatus = "taken"
	DoseSkipped DoseStatus = "skipped"
	DoseMissed  DoseStatus = "missed"
	DoseSnoozed DoseStatus = "snoozed"
)

// validDoseStatuses gates what the API may record directly; missed doses are
// derived by the scheduler, not reported by users.
var validDoseStatuses = map[DoseStatus]bool{
	DoseTaken:   true,
	DoseSkipped: true,
	DoseSnoozed: true,
}

// DoseEvent records what happened to one dose of one medication.
type DoseEvent struct {
	ID           uuid.UUID  `json:"id"`
	MedicationID uuid.UUID  `json:"medicationId"`
	UserID       uuid.UUID  `json:"userId"`
	Status       DoseStatus `json:"status"`

	// ScheduledAt is the nominal dose time; RecordedAt is when the user told
	// us about it.
	ScheduledAt time.Time `json:"scheduledAt"`
	RecordedAt  time.Time `json:"recordedAt"`

	// SnoozedUntil is set only for snoozed doses.
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

// NewDoseEvent records a user-reported dose outcome.
func NewDoseEvent(medicationID, userID uuid.UUID, status DoseStatus, scheduledAt time.Time) (*DoseEvent, error) {
	if medicationID == uuid.Nil || userID == uuid.Nil {
		return nil, errors.New(errors.ErrCodeDoseEventInvalid, "medicationId and userId are required")
	}
	if !validDoseStatuses[status] {
		return nil, errors.Newf(errors.ErrCodeDoseEventInvalid, "invalid dose status %q", status)
	}
	return &DoseEvent{
		ID:           uuid.New(),
		MedicationID: medicationID,
		UserID:       userID,
		Status:       status,
		ScheduledAt:  scheduledAt.UTC(),
		RecordedAt:   time.Now().UTC(),
	}, nil
}

// Snooze marks the event snoozed and computes the new reminder time.
func (d *DoseEvent) Snooze(duration time.Duration) error {
	if duration <= 0 {
		return errors.New(errors.ErrCodeDoseEventInvalid, "snooze duration must be positive")
	}
	until := time.Now().UTC().Add(duration)
	d.Status = DoseSnoozed
	d.SnoozedUntil = &until
	return nil
}
