package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// DoseLogRepository
// ─────────────────────────────────────────────────────────────────────────────

// DoseLogRepository is the PostgreSQL implementation of
// medication.DoseLogRepository.
type DoseLogRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewDoseLogRepository constructs a ready-to-use DoseLogRepository.
func NewDoseLogRepository(pool *pgxpool.Pool, logger logging.Logger) *DoseLogRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DoseLogRepository{pool: pool, logger: logger}
}

const doseEventColumns = `
	id, medication_id, user_id, status, scheduled_at, recorded_at, snoozed_until`

// Record appends one dose event to the log.
func (r *DoseLogRepository) Record(ctx context.Context, e *medication.DoseEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dose_events (`+doseEventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.MedicationID, e.UserID, e.Status, e.ScheduledAt, e.RecordedAt, e.SnoozedUntil,
	)
	if err != nil {
		r.logger.Error("DoseLogRepository.Record", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to record dose event")
	}
	return nil
}

// ListByMedication returns a medication's dose events since the cutoff,
// newest first.
func (r *DoseLogRepository) ListByMedication(ctx context.Context, medicationID uuid.UUID, since time.Time) ([]*medication.DoseEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doseEventColumns+`
		FROM dose_events
		WHERE medication_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC`, medicationID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list dose events")
	}
	defer rows.Close()
	return collectDoseEvents(rows)
}

// ListByUser returns all of a user's dose events since the cutoff, newest
// first.
func (r *DoseLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]*medication.DoseEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doseEventColumns+`
		FROM dose_events
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC`, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list dose events")
	}
	defer rows.Close()
	return collectDoseEvents(rows)
}

// LastForMedication returns the most recently recorded event for a
// medication, used to answer "did I take my X" questions.
func (r *DoseLogRepository) LastForMedication(ctx context.Context, medicationID uuid.UUID) (*medication.DoseEvent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doseEventColumns+`
		FROM dose_events
		WHERE medication_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, medicationID)

	e, err := scanDoseEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeDoseEventNotFound, "no dose events for medication %s", medicationID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load dose event")
	}
	return e, nil
}

func collectDoseEvents(rows pgx.Rows) ([]*medication.DoseEvent, error) {
	var events []*medication.DoseEvent
	for rows.Next() {
		e, err := scanDoseEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan dose event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate dose events")
	}
	return events, nil
}

func scanDoseEvent(row pgx.Row) (*medication.DoseEvent, error) {
	e := &medication.DoseEvent{}
	err := row.Scan(
		&e.ID, &e.MedicationID, &e.UserID, &e.Status,
		&e.ScheduledAt, &e.RecordedAt, &e.SnoozedUntil,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
