// Package repositories provides PostgreSQL-backed implementations of the
// medication domain repository interfaces.
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// MedicationRepository
// ─────────────────────────────────────────────────────────────────────────────

// MedicationRepository is the PostgreSQL implementation of
// medication.Repository. Every method takes a context for cancellation and
// uses parameterised queries exclusively.
type MedicationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewMedicationRepository constructs a ready-to-use MedicationRepository.
func NewMedicationRepository(pool *pgxpool.Pool, logger logging.Logger) *MedicationRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MedicationRepository{pool: pool, logger: logger}
}

const medicationColumns = `
	id, user_id, name, dosage, frequency, instructions, times,
	active, created_at, updated_at, deleted_at`

// Create persists a new medication. A live medication with the same
// case-insensitive name for the same user is a conflict.
func (r *MedicationRepository) Create(ctx context.Context, m *medication.Medication) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM medications
			WHERE user_id = $1 AND lower(name) = lower($2) AND deleted_at IS NULL
		)`, m.UserID, m.Name).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check for existing medication")
	}
	if exists {
		return errors.Newf(errors.ErrCodeMedicationAlreadyExists, "%s is already on the medication list", m.Name)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO medications (`+medicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency, m.Instructions, m.Times,
		m.Active, m.CreatedAt, m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		r.logger.Error("MedicationRepository.Create", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert medication")
	}
	return nil
}

// GetByID loads one medication by primary key, soft-deleted rows excluded.
func (r *MedicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE id = $1 AND deleted_at IS NULL`, id)

	m, err := scanMedication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeMedicationNotFound, "medication %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load medication")
	}
	return m, nil
}

// GetByName resolves a user's medication by case-insensitive name.
func (r *MedicationRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*medication.Medication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE user_id = $1 AND lower(name) = lower($2) AND deleted_at IS NULL`,
		userID, name)

	m, err := scanMedication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeMedicationNotFound, "no medication named %q", name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load medication")
	}
	return m, nil
}

// ListActive returns the user's active medications ordered by name.
func (r *MedicationRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]*medication.Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE user_id = $1 AND active AND deleted_at IS NULL
		ORDER BY lower(name)`, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list medications")
	}
	defer rows.Close()

	var meds []*medication.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan medication")
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate medications")
	}
	return meds, nil
}

// Update rewrites the mutable columns of an existing medication.
func (r *MedicationRepository) Update(ctx context.Context, m *medication.Medication) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medications
		SET dosage = $2, frequency = $3, instructions = $4, times = $5,
		    active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`,
		m.ID, m.Dosage, m.Frequency, m.Instructions, m.Times, m.Active, m.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("MedicationRepository.Update", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update medication")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeMedicationNotFound, "medication %s not found", m.ID)
	}
	return nil
}

// SoftDelete marks the medication deleted; dose history is preserved.
func (r *MedicationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medications
		SET deleted_at = now(), active = false
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete medication")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeMedicationNotFound, "medication %s not found", id)
	}
	return nil
}

// scanMedication maps one row in medicationColumns order.
func scanMedication(row pgx.Row) (*medication.Medication, error) {
	m := &medication.Medication{}
	err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency, &m.Instructions, &m.Times,
		&m.Active, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
