package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careloop/medassist/internal/domain/medication"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/prometheus"
	"github.com/careloop/medassist/pkg/errors"
)

// MedicationHandler exposes the medication list CRUD and dose logging
// endpoints.
type MedicationHandler struct {
	repo    medication.Repository
	doseLog medication.DoseLogRepository
	metrics *prometheus.Metrics
}

// NewMedicationHandler builds the handler. metrics may be nil.
func NewMedicationHandler(repo medication.Repository, doseLog medication.DoseLogRepository, metrics *prometheus.Metrics) *MedicationHandler {
	return &MedicationHandler{repo: repo, doseLog: doseLog, metrics: metrics}
}

// RegisterRoutes mounts the medication endpoints on the given group.
func (h *MedicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/:userID/medications", h.Create)
	rg.GET("/users/:userID/medications", h.List)
	rg.GET("/users/:userID/medications/due", h.ListDue)
	rg.GET("/medications/:id", h.Get)
	rg.PATCH("/medications/:id", h.Update)
	rg.DELETE("/medications/:id", h.Delete)
	rg.POST("/medications/:id/doses", h.RecordDose)
	rg.GET("/medications/:id/doses", h.ListDoses)
}

type createMedicationBody struct {
	Name         string   `json:"name" binding:"required"`
	Dosage       string   `json:"dosage"`
	Frequency    string   `json:"frequency"`
	Instructions string   `json:"instructions"`
	Times        []string `json:"times"`
}

// Create adds a medication to the user's list.
func (h *MedicationHandler) Create(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var body createMedicationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	m, err := medication.NewMedication(userID, body.Name, body.Dosage, body.Frequency, body.Instructions, body.Times)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MedicationsAdded.Inc()
	}
	c.JSON(http.StatusCreated, m)
}

// List returns the user's active medications.
func (h *MedicationHandler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	meds, err := h.repo.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if meds == nil {
		meds = []*medication.Medication{}
	}
	c.JSON(http.StatusOK, gin.H{"medications": meds})
}

// ListDue returns the user's doses scheduled within the query window
// (default 4h), soonest first.
func (h *MedicationHandler) ListDue(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	window := 4 * time.Hour
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			respondError(c, errors.New(errors.ErrCodeBadRequest, "window must be a positive duration"))
			return
		}
		window = parsed
	}

	meds, err := h.repo.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	due := medication.DueWithin(meds, time.Now(), window)
	if due == nil {
		due = []medication.DueDose{}
	}
	c.JSON(http.StatusOK, gin.H{"due": due})
}

// Get returns one medication by id.
func (h *MedicationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type updateMedicationBody struct {
	Dosage       string   `json:"dosage"`
	Frequency    string   `json:"frequency"`
	Instructions string   `json:"instructions"`
	Times        []string `json:"times"`
}

// Update changes a medication's attributes. Omitted fields keep their
// current values.
func (h *MedicationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body updateMedicationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.Update(body.Dosage, body.Frequency, body.Instructions, body.Times); err != nil {
		respondError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Delete archives a medication, keeping its dose history.
func (h *MedicationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordDoseBody struct {
	Status      string    `json:"status" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// RecordDose logs a dose outcome for a medication.
func (h *MedicationHandler) RecordDose(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body recordDoseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	scheduledAt := body.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = time.Now().UTC()
	}
	event, err := medication.NewDoseEvent(m.ID, m.UserID, medication.DoseStatus(body.Status), scheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.doseLog.Record(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DoseEventsTotal.WithLabelValues(body.Status).Inc()
	}
	c.JSON(http.StatusCreated, event)
}

// ListDoses returns a medication's dose events from the last 30 days, or
// since the "since" query parameter (RFC 3339).
func (h *MedicationHandler) ListDoses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, errors.New(errors.ErrCodeBadRequest, "since must be RFC 3339"))
			return
		}
		since = parsed
	}

	events, err := h.doseLog.ListByMedication(c.Request.Context(), id, since)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []*medication.DoseEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
