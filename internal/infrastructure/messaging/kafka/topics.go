// Package kafka publishes caregiver alert events. The assistant raises an
// event whenever a conflict warning fires or a dose is skipped; downstream
// consumers deliver the actual notifications.
package kafka

import (
	"encoding/json"
	"time"
)

// Alert topics.
const (
	TopicConflictWarning = "medassist.alerts.conflict"
	TopicDoseSkipped     = "medassist.alerts.dose_skipped"
	TopicDoseMissed      = "medassist.alerts.dose_missed"
)

// EventEnvelope standardizes alert messages on the wire.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// SchemaVersion of the envelope format.
const SchemaVersion = "1.0"

// ConflictWarningPayload is the payload for TopicConflictWarning events.
type ConflictWarningPayload struct {
	UserID         string   `json:"user_id"`
	Candidate      string   `json:"candidate"`
	Category       string   `json:"category"`
	Severity       string   `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
	Medications    []string `json:"medications"`
}

// DoseEventPayload is the payload for dose skipped/missed events.
type DoseEventPayload struct {
	UserID         string    `json:"user_id"`
	MedicationID   string    `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Status         string    `json:"status"`
	ScheduledAt    time.Time `json:"scheduled_at"`
}
