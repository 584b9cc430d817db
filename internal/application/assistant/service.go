// Package assistant orchestrates the message pipeline: classify the
// utterance, act on the intent against the user's medication data, render a
// reply, and record the exchange. The language engine itself stays pure;
// every side effect lives here.
package assistant

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/internal/infrastructure/database/redis"
	"github.com/careloop/medassist/internal/infrastructure/messaging/kafka"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/prometheus"
	"github.com/careloop/medassist/internal/nlu"
	"github.com/careloop/medassist/pkg/errors"
)

// ----------------------------------------------------------------------------
// DTOs
// ----------------------------------------------------------------------------

// MessageRequest is one inbound user utterance.
type MessageRequest struct {
	UserID uuid.UUID `json:"userId"`
	Text   string    `json:"text"`
}

// MessageResponse is the rendered assistant reply plus the structured
// interpretation that produced it.
type MessageResponse struct {
	Reply    string                `json:"reply"`
	Intent   nlu.Intent            `json:"intent"`
	Warnings []nlu.ConflictWarning `json:"warnings,omitempty"`
}

// ----------------------------------------------------------------------------
// Collaborator contracts
// ----------------------------------------------------------------------------

// ConversationStore records dialogue turns. Satisfied by the Redis store.
type ConversationStore interface {
	AppendTurn(ctx context.Context, userID string, turn redis.Turn) error
	History(ctx context.Context, userID string, limit int) ([]redis.Turn, error)
}

// AlertPublisher delivers caregiver alerts. Satisfied by the Kafka producer.
type AlertPublisher interface {
	PublishConflictWarning(ctx context.Context, payload kafka.ConflictWarningPayload) error
	PublishDoseSkipped(ctx context.Context, payload kafka.DoseEventPayload) error
}

// Service is the assistant application service.
type Service interface {
	// HandleMessage runs the full pipeline for one utterance.
	HandleMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)

	// ParseForForm extracts structured medication candidates for pre-filling
	// an add-medication form. No side effects.
	ParseForForm(ctx context.Context, text string) []nlu.ParsedMedication

	// CheckCandidate runs conflict detection for a candidate name against
	// the user's current list.
	CheckCandidate(ctx context.Context, userID uuid.UUID, candidate string) ([]nlu.ConflictWarning, error)
}

// Config holds the pipeline tunables.
type Config struct {
	MaxUtteranceLength int
	DefaultSnooze      time.Duration
	PublishConflicts   bool
}

type service struct {
	engine        *nlu.Engine
	medications   medication.Repository
	doseLog       medication.DoseLogRepository
	conversations ConversationStore
	alerts        AlertPublisher
	cfg           Config
	logger        logging.Logger
	metrics       *prometheus.Metrics
}

// NewService wires the pipeline. conversations, alerts and metrics may be
// nil; the corresponding steps are skipped.
func NewService(
	engine *nlu.Engine,
	medications medication.Repository,
	doseLog medication.DoseLogRepository,
	conversations ConversationStore,
	alerts AlertPublisher,
	cfg Config,
	logger logging.Logger,
	metrics *prometheus.Metrics,
) Service {
	if engine == nil {
		engine = nlu.NewEngine(nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxUtteranceLength <= 0 {
		cfg.MaxUtteranceLength = 1000
	}
	if cfg.DefaultSnooze <= 0 {
		cfg.DefaultSnooze = 15 * time.Minute
	}
	return &service{
		engine:        engine,
		medications:   medications,
		doseLog:       doseLog,
		conversations: conversations,
		alerts:        alerts,
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
	}
}

// ----------------------------------------------------------------------------
// Core pipeline
// ----------------------------------------------------------------------------

func (s *service) HandleMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	start := time.Now()

	if req == nil || req.Text == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "message text is required")
	}
	if len(req.Text) > s.cfg.MaxUtteranceLength {
		return nil, errors.Newf(errors.ErrCodeUtteranceTooLong, "message exceeds %d characters", s.cfg.MaxUtteranceLength)
	}

	// Step 1: load the user's active medications for entity matching.
	meds, err := s.medications.ListActive(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	known := make([]string, 0, len(meds))
	view := make([]nlu.UserMedication, 0, len(meds))
	for _, m := range meds {
		known = append(known, m.Name)
		view = append(view, nlu.UserMedication{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Instructions: m.Instructions,
			Times:        m.Times,
		})
	}

	// Step 2: classify.
	intent := s.engine.Classify(req.Text, known)
	if s.metrics != nil {
		s.metrics.IntentsTotal.WithLabelValues(string(intent.Kind)).Inc()
	}

	// Step 3: act on the intent.
	warnings := s.dispatch(ctx, req, meds, intent)

	// Step 4: render the reply and attach warnings.
	reply := s.engine.Respond(intent, view)
	reply = nlu.AppendWarnings(reply, warnings)

	// Step 5: record the exchange. A cache outage never fails the message.
	if s.conversations != nil {
		turn := redis.Turn{
			UserText:  req.Text,
			Reply:     reply,
			Intent:    string(intent.Kind),
			Timestamp: time.Now().UTC(),
		}
		if err := s.conversations.AppendTurn(ctx, req.UserID.String(), turn); err != nil {
			s.logger.Warn("failed to record conversation turn", logging.Err(err))
			if s.metrics != nil {
				s.metrics.CacheErrorsTotal.Inc()
			}
		}
	}

	// Step 6: publish caregiver alerts for any warnings raised.
	s.publishWarnings(ctx, req.UserID, intent, warnings)

	if s.metrics != nil {
		s.metrics.MessagesTotal.WithLabelValues("ok").Inc()
		s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}
	return &MessageResponse{Reply: reply, Intent: intent, Warnings: warnings}, nil
}

// dispatch performs the intent's side effects and returns any conflict
// warnings to attach to the reply.
func (s *service) dispatch(ctx context.Context, req *MessageRequest, meds []*medication.Medication, intent nlu.Intent) []nlu.ConflictWarning {
	switch intent.Kind {
	case nlu.IntentAddMedication:
		return s.conflictsForCandidate(req.Text, meds)

	case nlu.IntentMarkTaken:
		s.recordDose(ctx, req.UserID, meds, intent, medication.DoseTaken)

	case nlu.IntentSkipDose:
		if e := s.recordDose(ctx, req.UserID, meds, intent, medication.DoseSkipped); e != nil && s.alerts != nil {
			payload := kafka.DoseEventPayload{
				UserID:         req.UserID.String(),
				MedicationID:   e.MedicationID.String(),
				MedicationName: intent.Parameters[nlu.ParamMedicationName],
				Status:         string(medication.DoseSkipped),
				ScheduledAt:    e.ScheduledAt,
			}
			if err := s.alerts.PublishDoseSkipped(ctx, payload); err != nil {
				s.logger.Warn("failed to publish skipped-dose alert", logging.Err(err))
			}
		}

	case nlu.IntentSnooze:
		s.snoozeLastDose(ctx, meds, intent)
	}
	return nil
}

// conflictsForCandidate parses candidate medications out of the utterance
// and checks each against the user's current list.
func (s *service) conflictsForCandidate(text string, meds []*medication.Medication) []nlu.ConflictWarning {
	existing := make([]string, 0, len(meds))
	for _, m := range meds {
		existing = append(existing, m.Name)
	}

	var warnings []nlu.ConflictWarning
	for _, candidate := range s.engine.Parse(text) {
		warnings = append(warnings, s.engine.CheckConflicts(candidate.Name, existing)...)
	}
	if s.metrics != nil {
		for _, w := range warnings {
			s.metrics.ConflictWarningsTotal.WithLabelValues(string(w.Category), string(w.Severity)).Inc()
		}
	}
	return warnings
}

// recordDose resolves the named medication and appends a dose event. Returns
// the recorded event, or nil when nothing could be recorded.
func (s *service) recordDose(ctx context.Context, userID uuid.UUID, meds []*medication.Medication, intent nlu.Intent, status medication.DoseStatus) *medication.DoseEvent {
	if s.doseLog == nil {
		return nil
	}
	target := resolveByName(meds, intent.Parameters[nlu.ParamMedicationName])
	if target == nil {
		return nil
	}

	event, err := medication.NewDoseEvent(target.ID, userID, status, time.Now().UTC())
	if err != nil {
		s.logger.Warn("failed to build dose event", logging.Err(err))
		return nil
	}
	if err := s.doseLog.Record(ctx, event); err != nil {
		s.logger.Error("failed to record dose event", logging.Err(err))
		return nil
	}
	if s.metrics != nil {
		s.metrics.DoseEventsTotal.WithLabelValues(string(status)).Inc()
	}
	return event
}

// snoozeLastDose reschedules the most recent dose event of the named (or
// only) medication by the requested duration.
func (s *service) snoozeLastDose(ctx context.Context, meds []*medication.Medication, intent nlu.Intent) {
	if s.doseLog == nil {
		return
	}
	target := resolveByName(meds, intent.Parameters[nlu.ParamMedicationName])
	if target == nil && len(meds) == 1 {
		target = meds[0]
	}
	if target == nil {
		return
	}

	last, err := s.doseLog.LastForMedication(ctx, target.ID)
	if err != nil {
		return
	}

	event, err := medication.NewDoseEvent(target.ID, last.UserID, medication.DoseSnoozed, last.ScheduledAt)
	if err != nil {
		return
	}
	if err := event.Snooze(s.snoozeDuration(intent)); err != nil {
		return
	}
	if err := s.doseLog.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record snoozed dose", logging.Err(err))
		return
	}
	if s.metrics != nil {
		s.metrics.DoseEventsTotal.WithLabelValues(string(medication.DoseSnoozed)).Inc()
	}
}

// snoozeDuration reads the parsed duration parameters, falling back to the
// configured default.
func (s *service) snoozeDuration(intent nlu.Intent) time.Duration {
	n, err := strconv.Atoi(intent.Parameters[nlu.ParamDuration])
	if err != nil || n <= 0 {
		return s.cfg.DefaultSnooze
	}
	if intent.Parameters[nlu.ParamUnit] == "hours" {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Minute
}

func (s *service) publishWarnings(ctx context.Context, userID uuid.UUID, intent nlu.Intent, warnings []nlu.ConflictWarning) {
	if s.alerts == nil || !s.cfg.PublishConflicts {
		return
	}
	for _, w := range warnings {
		candidate := intent.Parameters[nlu.ParamMedicationName]
		if len(w.Medications) > 0 {
			candidate = w.Medications[0]
		}
		payload := kafka.ConflictWarningPayload{
			UserID:         userID.String(),
			Candidate:      candidate,
			Category:       string(w.Category),
			Severity:       string(w.Severity),
			Message:        w.Message,
			Recommendation: w.Recommendation,
			Medications:    w.Medications,
		}
		if err := s.alerts.PublishConflictWarning(ctx, payload); err != nil {
			s.logger.Warn("failed to publish conflict alert", logging.Err(err))
		}
	}
}

// ----------------------------------------------------------------------------
// Secondary operations
// ----------------------------------------------------------------------------

func (s *service) ParseForForm(_ context.Context, text string) []nlu.ParsedMedication {
	return s.engine.Parse(text)
}

func (s *service) CheckCandidate(ctx context.Context, userID uuid.UUID, candidate string) ([]nlu.ConflictWarning, error) {
	if candidate == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "candidate name is required")
	}

	meds, err := s.medications.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing := make([]string, 0, len(meds))
	for _, m := range meds {
		existing = append(existing, m.Name)
	}
	return s.engine.CheckConflicts(candidate, existing), nil
}

// resolveByName matches the way the response templates resolve names: exact
// fold first, then substring in either direction.
func resolveByName(meds []*medication.Medication, name string) *medication.Medication {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil
	}
	for _, m := range meds {
		if strings.ToLower(m.Name) == name {
			return m
		}
	}
	for _, m := range meds {
		lower := strings.ToLower(m.Name)
		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			return m
		}
	}
	return nil
}
