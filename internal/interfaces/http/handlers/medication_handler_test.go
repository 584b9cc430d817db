package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/pkg/errors"
)

type memMedRepo struct {
	meds map[uuid.UUID]*medication.Medication
}

func newMemMedRepo() *memMedRepo {
	return &memMedRepo{meds: make(map[uuid.UUID]*medication.Medication)}
}

func (r *memMedRepo) Create(_ context.Context, m *medication.Medication) error {
	for _, existing := range r.meds {
		if existing.UserID == m.UserID && existing.DeletedAt == nil &&
			strings.EqualFold(existing.Name, m.Name) {
			return errors.Newf(errors.ErrCodeMedicationAlreadyExists, "medication %q already exists", m.Name)
		}
	}
	r.meds[m.ID] = m
	return nil
}

func (r *memMedRepo) GetByID(_ context.Context, id uuid.UUID) (*medication.Medication, error) {
	m, ok := r.meds[id]
	if !ok || m.DeletedAt != nil {
		return nil, errors.New(errors.ErrCodeMedicationNotFound, "medication not found")
	}
	return m, nil
}

func (r *memMedRepo) GetByName(_ context.Context, userID uuid.UUID, name string) (*medication.Medication, error) {
	for _, m := range r.meds {
		if m.UserID == userID && m.DeletedAt == nil && strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeMedicationNotFound, "medication not found")
}

func (r *memMedRepo) ListActive(_ context.Context, userID uuid.UUID) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range r.meds {
		if m.UserID == userID && m.Active && m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMedRepo) Update(_ context.Context, m *medication.Medication) error {
	if _, ok := r.meds[m.ID]; !ok {
		return errors.New(errors.ErrCodeMedicationNotFound, "medication not found")
	}
	r.meds[m.ID] = m
	return nil
}

func (r *memMedRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	m, ok := r.meds[id]
	if !ok || m.DeletedAt != nil {
		return errors.New(errors.ErrCodeMedicationNotFound, "medication not found")
	}
	now := time.Now().UTC()
	m.DeletedAt = &now
	m.Active = false
	return nil
}

type memDoseLog struct {
	events []*medication.DoseEvent
}

func (l *memDoseLog) Record(_ context.Context, e *medication.DoseEvent) error {
	l.events = append(l.events, e)
	return nil
}

func (l *memDoseLog) ListByMedication(_ context.Context, medicationID uuid.UUID, since time.Time) ([]*medication.DoseEvent, error) {
	var out []*medication.DoseEvent
	for _, e := range l.events {
		if e.MedicationID == medicationID && !e.RecordedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memDoseLog) ListByUser(_ context.Context, userID uuid.UUID, since time.Time) ([]*medication.DoseEvent, error) {
	var out []*medication.DoseEvent
	for _, e := range l.events {
		if e.UserID == userID && !e.RecordedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memDoseLog) LastForMedication(_ context.Context, medicationID uuid.UUID) (*medication.DoseEvent, error) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].MedicationID == medicationID {
			return l.events[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeDoseEventNotFound, "no dose events")
}

func medicationRouter(repo medication.Repository, doseLog medication.DoseLogRepository) *gin.Engine {
	r := gin.New()
	h := NewMedicationHandler(repo, doseLog, nil)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestCreateMedication(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})
	userID := uuid.New()

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/"+userID.String()+"/medications", gin.H{
		"name":      "Metformin",
		"dosage":    "500mg",
		"frequency": "twice daily",
		"times":     []string{"8:00 am", "6:00 pm"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var m medication.Medication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "Metformin", m.Name)
	assert.Equal(t, []string{"08:00", "18:00"}, m.Times)
	assert.True(t, m.Active)
	assert.Len(t, repo.meds, 1)
}

func TestCreateMedication_DuplicateName(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})
	userID := uuid.New()

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/"+userID.String()+"/medications",
		gin.H{"name": "Aspirin"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/"+userID.String()+"/medications",
		gin.H{"name": "aspirin"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateMedication_InvalidTime(t *testing.T) {
	r := medicationRouter(newMemMedRepo(), &memDoseLog{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/"+uuid.NewString()+"/medications",
		gin.H{"name": "Aspirin", "times": []string{"around noon"}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeValidation), resp.Code)
}

func TestListMedications_EmptyIsArray(t *testing.T) {
	r := medicationRouter(newMemMedRepo(), &memDoseLog{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/"+uuid.NewString()+"/medications", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"medications":[]}`, w.Body.String())
}

func TestListDue_WindowFilter(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})
	userID := uuid.New()

	soon := time.Now().Add(30 * time.Minute).Format("15:04")
	m, err := medication.NewMedication(userID, "Metformin", "500mg", "", "", []string{soon})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/"+userID.String()+"/medications/due?window=1h", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Due []medication.DueDose `json:"due"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Due, 1)
	assert.Equal(t, "Metformin", resp.Due[0].Medication.Name)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/"+userID.String()+"/medications/due?window=5m", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"due":[]}`, w.Body.String())
}

func TestListDue_BadWindow(t *testing.T) {
	r := medicationRouter(newMemMedRepo(), &memDoseLog{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/"+uuid.NewString()+"/medications/due?window=soonish", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMedication_NotFound(t *testing.T) {
	r := medicationRouter(newMemMedRepo(), &memDoseLog{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/medications/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMedication_PartialKeepsFields(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})
	userID := uuid.New()

	m, err := medication.NewMedication(userID, "Lisinopril", "10mg", "once daily", "", []string{"08:00"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	w := doJSON(t, r, http.MethodPatch, "/api/v1/medications/"+m.ID.String(),
		gin.H{"dosage": "20mg"})

	require.Equal(t, http.StatusOK, w.Code)
	var updated medication.Medication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "20mg", updated.Dosage)
	assert.Equal(t, "once daily", updated.Frequency)
	assert.Equal(t, []string{"08:00"}, updated.Times)
}

func TestDeleteMedication(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})
	userID := uuid.New()

	m, err := medication.NewMedication(userID, "Aspirin", "", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	w := doJSON(t, r, http.MethodDelete, "/api/v1/medications/"+m.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/medications/"+m.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordDose(t *testing.T) {
	repo := newMemMedRepo()
	doseLog := &memDoseLog{}
	r := medicationRouter(repo, doseLog)
	userID := uuid.New()

	m, err := medication.NewMedication(userID, "Metformin", "500mg", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	w := doJSON(t, r, http.MethodPost, "/api/v1/medications/"+m.ID.String()+"/doses",
		gin.H{"status": "taken"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, doseLog.events, 1)
	assert.Equal(t, medication.DoseTaken, doseLog.events[0].Status)
	assert.Equal(t, m.ID, doseLog.events[0].MedicationID)
	assert.Equal(t, userID, doseLog.events[0].UserID)
}

func TestRecordDose_InvalidStatus(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})

	m, err := medication.NewMedication(uuid.New(), "Metformin", "", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	w := doJSON(t, r, http.MethodPost, "/api/v1/medications/"+m.ID.String()+"/doses",
		gin.H{"status": "missed"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDoses_SinceFilter(t *testing.T) {
	repo := newMemMedRepo()
	doseLog := &memDoseLog{}
	r := medicationRouter(repo, doseLog)
	userID := uuid.New()

	m, err := medication.NewMedication(userID, "Metformin", "", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))

	old, err := medication.NewDoseEvent(m.ID, userID, medication.DoseTaken, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	old.RecordedAt = time.Now().UTC().Add(-48 * time.Hour)
	recent, err := medication.NewDoseEvent(m.ID, userID, medication.DoseTaken, time.Now())
	require.NoError(t, err)
	doseLog.events = append(doseLog.events, old, recent)

	since := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	w := doJSON(t, r, http.MethodGet, "/api/v1/medications/"+m.ID.String()+"/doses?since="+since, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Events []*medication.DoseEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 1)
}

func TestListDoses_BadSince(t *testing.T) {
	repo := newMemMedRepo()
	r := medicationRouter(repo, &memDoseLog{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/medications/"+uuid.NewString()+"/doses?since=yesterday", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
