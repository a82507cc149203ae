package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.HTTPRequestsTotal)
	assert.NotNil(t, r.RiskScoresTotal)
	assert.NotNil(t, r.DashboardBuilds)
	assert.NotNil(t, r.registry)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.RecordRisk("HIGH")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.RiskScoresTotal.WithLabelValues("HIGH")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RiskScoresTotal.WithLabelValues("HIGH")))
}

func TestRecorders(t *testing.T) {
	r := NewRegistry()

	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheRequestsTotal.WithLabelValues("miss")))

	r.RecordWrite("activity", nil)
	r.RecordWrite("activity", errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LedgerWritesTotal.WithLabelValues("activity", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LedgerWritesTotal.WithLabelValues("activity", "error")))

	r.RecordHTTPRequest("GET", "/healthz", "200", 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))

	r.ObserveOperation("node_risk", time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(r.OperationDuration))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.DashboardBuilds.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tempo_dashboard_builds_total 1")
}
