package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.SolverFailure("max_sharpe")
	m.SolverFailure("max_sharpe")
	m.CacheLookup("analytics", true)
	m.CacheLookup("analytics", false)
	m.DataGaps(3)
	m.ObservePipeline("analytics")(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solverFailures.WithLabelValues("max_sharpe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("analytics", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("analytics", "miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dataGaps))
	assert.Equal(t, 1, testutil.CollectAndCount(m.pipelineDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SolverFailure("min_volatility")
		m.CacheLookup("analytics", true)
		m.DataGaps(1)
		m.ObservePipeline("frontier")(time.Second)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/prices/{symbol}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices/SPY", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/prices/{symbol}", "418"),
	))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "folio_http_requests_total")
}
