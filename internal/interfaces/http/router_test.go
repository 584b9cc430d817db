package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/prometheus"
	"github.com/careloop/medassist/internal/interfaces/http/handlers"
)

func TestNewRouter_ServesProbesAndMetrics(t *testing.T) {
	metrics := prometheus.NewMetrics()
	r := NewRouter(RouterDeps{
		Health:     handlers.NewHealthHandler("test"),
		Metrics:    metrics,
		Config:     config.ServerConfig{Mode: "test"},
		MetricsCfg: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medassist_http_requests_total")
}

func TestNewRouter_MetricsDisabled(t *testing.T) {
	r := NewRouter(RouterDeps{
		Metrics:    prometheus.NewMetrics(),
		Config:     config.ServerConfig{Mode: "test"},
		MetricsCfg: config.MetricsConfig{Enabled: false, Path: "/metrics"},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(RouterDeps{
		Config:     config.ServerConfig{Mode: "test"},
		MetricsCfg: config.MetricsConfig{Path: "/metrics"},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/parse", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
