//go:build integration

// Integration tests for the PostgreSQL repositories. They need a running
// database; point TEST_DATABASE_URL at one and run with -tags integration.
package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/internal/infrastructure/database/postgres"
	"github.com/careloop/medassist/internal/infrastructure/database/postgres/repositories"
	"github.com/careloop/medassist/pkg/errors"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, postgres.RunMigrations(dsn, "file://../../../../../migrations"))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newMedication(t *testing.T, userID uuid.UUID, name string) *medication.Medication {
	t.Helper()
	m, err := medication.NewMedication(userID, name, "500mg", "twice daily", "with food", []string{"08:00", "18:00"})
	require.NoError(t, err)
	return m
}

func TestMedicationRepository_CRUD(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewMedicationRepository(pool, nil)
	ctx := context.Background()
	userID := uuid.New()

	m := newMedication(t, userID, "Metformin")
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Times, got.Times)

	got, err = repo.GetByName(ctx, userID, "METFORMIN")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	// Duplicate live name is rejected.
	dup := newMedication(t, userID, "metformin")
	err = repo.Create(ctx, dup)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMedicationAlreadyExists))

	require.NoError(t, got.Update("850mg", "", "", nil))
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "850mg", got.Dosage)

	list, err := repo.ListActive(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.SoftDelete(ctx, m.ID))
	_, err = repo.GetByID(ctx, m.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMedicationNotFound))

	// Name is reusable once the old row is soft-deleted.
	assert.NoError(t, repo.Create(ctx, newMedication(t, userID, "Metformin")))
}

func TestDoseLogRepository(t *testing.T) {
	pool := testPool(t)
	medRepo := repositories.NewMedicationRepository(pool, nil)
	doseRepo := repositories.NewDoseLogRepository(pool, nil)
	ctx := context.Background()
	userID := uuid.New()

	m := newMedication(t, userID, "Lisinopril")
	require.NoError(t, medRepo.Create(ctx, m))

	_, err := doseRepo.LastForMedication(ctx, m.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDoseEventNotFound))

	first, err := medication.NewDoseEvent(m.ID, userID, medication.DoseTaken, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, doseRepo.Record(ctx, first))

	second, err := medication.NewDoseEvent(m.ID, userID, medication.DoseSkipped, time.Now())
	require.NoError(t, err)
	second.RecordedAt = second.RecordedAt.Add(time.Second)
	require.NoError(t, doseRepo.Record(ctx, second))

	last, err := doseRepo.LastForMedication(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, last.ID)
	assert.Equal(t, medication.DoseSkipped, last.Status)

	events, err := doseRepo.ListByUser(ctx, userID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
}
