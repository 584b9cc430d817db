package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the health of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to the HealthChecker interface.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.CheckName }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	version  string
	startAt  time.Time
	checkers []HealthChecker
}

// NewHealthHandler builds the handler with the dependencies to probe.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, startAt: time.Now(), checkers: checkers}
}

// RegisterRoutes mounts the probes at the router root.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// Liveness confirms the process is up; it never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Round(time.Second).String(),
	})
}

type componentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness probes every dependency; any failure yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	components := make([]componentStatus, 0, len(h.checkers))
	for _, checker := range h.checkers {
		status := componentStatus{Name: checker.Name(), Status: "ok"}
		if err := checker.Check(ctx); err != nil {
			healthy = false
			status.Status = "unavailable"
			status.Error = err.Error()
		}
		components = append(components, status)
	}

	code := http.StatusOK
	overall := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(code, gin.H{"status": overall, "components": components})
}
