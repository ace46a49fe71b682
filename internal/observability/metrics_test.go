package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordQuery(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordQuery(QueryCacheHit)
	m.RecordQuery(QueryCacheHit)
	m.RecordQuery(QueryCacheMiss)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueryCounter.WithLabelValues(QueryCacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryCounter.WithLabelValues(QueryCacheMiss)))
}

func TestMetrics_RecordUpload(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordUpload(UploadSuccess, 5)
	m.RecordUpload(UploadRejected, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadCounter.WithLabelValues(UploadSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadCounter.WithLabelValues(UploadRejected)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ChunksIngested))
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTPRequest("POST", "/query", 200, 0.02)
	m.RecordHTTPRequest("POST", "/query", 400, 0.01)

	expected := `
		# HELP docqa_http_requests_total Total number of HTTP requests by method, route, and status code
		# TYPE docqa_http_requests_total counter
		docqa_http_requests_total{method="POST",route="/query",status_code="200"} 1
		docqa_http_requests_total{method="POST",route="/query",status_code="400"} 1
	`
	err := testutil.CollectAndCompare(m.HTTPRequestCounter, strings.NewReader(expected))
	assert.NoError(t, err)
}

func TestMetrics_RecordUpstream(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordUpstream("embed", 0.3, nil)
	m.RecordUpstream("complete", 1.2, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.UpstreamDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordQuery(QueryCacheHit)
		m.RecordUpload(UploadFailed, 3)
		m.RecordHTTPRequest("GET", "/health", 200, 0.1)
		m.RecordUpstream("embed", 0.1, nil)
		m.RecordExpired(2)
		m.RegisterStateGauges(func() int { return 0 }, func() int { return 0 })
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RegisterStateGauges(func() int { return 3 }, func() int { return 7 })
	m.RecordExpired(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "docqa_documents_loaded 3")
	assert.Contains(t, string(body), "docqa_cache_entries 7")
	assert.Contains(t, string(body), "docqa_documents_expired_total 1")
}
