// Package http wires the gin router and HTTP server for the API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/prometheus"
	"github.com/careloop/medassist/internal/interfaces/http/handlers"
	"github.com/careloop/medassist/internal/interfaces/http/middleware"
)

// RouterDeps collects everything the router needs.
type RouterDeps struct {
	Assistant  *handlers.AssistantHandler
	Medication *handlers.MedicationHandler
	Health     *handlers.HealthHandler
	Metrics    *prometheus.Metrics
	Logger     logging.Logger
	Limiter    *middleware.TokenBucketLimiter
	Config     config.ServerConfig
	MetricsCfg config.MetricsConfig
}

// NewRouter builds the gin engine with middleware and all route groups.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Mode != "" {
		gin.SetMode(deps.Config.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(deps.Logger, "/healthz", "/readyz", deps.MetricsCfg.Path))
	r.Use(middleware.RequestMetrics(deps.Metrics))
	r.Use(middleware.CORS())
	if deps.Limiter != nil {
		r.Use(middleware.RateLimit(deps.Limiter, "/healthz", "/readyz", deps.MetricsCfg.Path))
	}

	if deps.Health != nil {
		deps.Health.RegisterRoutes(r)
	}
	if deps.Metrics != nil && deps.MetricsCfg.Enabled {
		r.GET(deps.MetricsCfg.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	if deps.Assistant != nil {
		deps.Assistant.RegisterRoutes(v1)
	}
	if deps.Medication != nil {
		deps.Medication.RegisterRoutes(v1)
	}
	return r
}
