package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersWithoutPanic(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m)

	// A second instance must not collide with the first.
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IntentsTotal.WithLabelValues("check_status").Inc()
	m.IntentsTotal.WithLabelValues("check_status").Inc()
	m.ConflictWarningsTotal.WithLabelValues("interaction", "medium").Inc()
	m.MedicationsAdded.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IntentsTotal.WithLabelValues("check_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictWarningsTotal.WithLabelValues("interaction", "medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MedicationsAdded))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.MessagesTotal.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "medassist_assistant_messages_total")
}
