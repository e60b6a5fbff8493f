package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestObserveFetch(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveFetch("string", "ok", 120*time.Millisecond)
	m.ObserveFetch("string", "ok", 80*time.Millisecond)
	m.ObserveFetch("string", "empty", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("string", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("string", "empty")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestObserveCache(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheTotal.WithLabelValues("miss")))
}

func TestObserveAnalysis(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveAnalysis("degree_centrality", time.Millisecond, nil)
	m.ObserveAnalysis("eigenvector_centrality", time.Millisecond, errors.New("no convergence"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("degree_centrality", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("eigenvector_centrality", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestGauges(t *testing.T) {
	m := newTestMetrics(t)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.ClientConnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamClients))

	m.ClientDisconnected()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StreamClients))
}

func TestHandler(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveLayout("spring", 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ppiviz_layout_duration_seconds_count{algorithm="spring"} 1`)
	assert.Contains(t, string(body), `ppiviz_http_requests_total{code="200",method="GET"} 1`)
}
