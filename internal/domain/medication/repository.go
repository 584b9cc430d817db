package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for medications.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*Medication, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]*Medication, error)
	Update(ctx context.Context, m *Medication) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// DoseLogRepository is the persistence contract for dose events.
type DoseLogRepository interface {
	Record(ctx context.Context, e *DoseEvent) error
	ListByMedication(ctx context.Context, medicationID uuid.UUID, since time.Time) ([]*DoseEvent, error)
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]*DoseEvent, error)
	LastForMedication(ctx context.Context, medicationID uuid.UUID) (*DoseEvent, error)
}
