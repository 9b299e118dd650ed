package codelearn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	require.NotNil(t, collector)
	assert.NotNil(t, collector.requestsTotal)
	assert.NotNil(t, collector.requestDuration)
	assert.NotNil(t, collector.requestsInFlight)
	assert.NotNil(t, collector.errorsTotal)
	assert.NotNil(t, collector.queryHits)
	assert.NotNil(t, collector.queryMisses)
	assert.NotNil(t, collector.queryFetches)
	assert.NotNil(t, collector.invalidations)
	assert.NotNil(t, collector.refetches)
	assert.NotNil(t, collector.mutationsTotal)
	assert.Equal(t, prometheus.Registerer(registry), collector.Registry())
}

func TestMetricsCollectorRecords(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordRequest("GET", "localhost/api/users/", 200, 10*time.Millisecond)
	collector.RecordRequest("GET", "localhost/api/users/", 200, 20*time.Millisecond)
	collector.RecordRequestStart("GET", "localhost/api/users/")
	collector.RecordError(ErrorTypeServer, "POST", "localhost/api/users/login/")
	collector.RecordQueryHit("admin/users/")
	collector.RecordQueryMiss("admin/users/")
	collector.RecordQueryFetch("admin/users/", "success")
	collector.RecordQueryEntries(3)
	collector.RecordInvalidation("admin/")
	collector.RecordRefetch("admin/users/")
	collector.RecordMutation("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "200", "localhost/api/users/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsInFlight.WithLabelValues("GET", "localhost/api/users/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.errorsTotal.WithLabelValues(ErrorTypeServer, "POST", "localhost/api/users/login/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.queryHits.WithLabelValues("admin/users/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.queryMisses.WithLabelValues("admin/users/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.queryFetches.WithLabelValues("admin/users/", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.queryEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.invalidations.WithLabelValues("admin/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.refetches.WithLabelValues("admin/users/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.mutationsTotal.WithLabelValues("error")))

	collector.RecordRequestEnd("GET", "localhost/api/users/")
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.requestsInFlight.WithLabelValues("GET", "localhost/api/users/")))
}

func TestMetricsCollectorNilSafe(t *testing.T) {
	var collector *MetricsCollector

	assert.NotPanics(t, func() {
		collector.RecordRequest("GET", "x", 200, time.Millisecond)
		collector.RecordRequestStart("GET", "x")
		collector.RecordRequestEnd("GET", "x")
		collector.RecordError(ErrorTypeNetwork, "GET", "x")
		collector.RecordQueryHit("k")
		collector.RecordQueryMiss("k")
		collector.RecordQueryFetch("k", "error")
		collector.RecordQueryEntries(1)
		collector.RecordInvalidation("k")
		collector.RecordRefetch("k")
		collector.RecordMutation("success")
	})
}

func TestMetricsIntegration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)
	client := New(WithBaseURL(server.URL), WithMetricsCollector(collector))

	_, err := client.Get(context.Background(), "/courses/", nil)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/missing/", nil)
	require.Error(t, err)

	endpoint := strings.TrimPrefix(server.URL, "http://")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "200", endpoint+"/courses/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "404", endpoint+"/missing/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.errorsTotal.WithLabelValues(ErrorTypeServer, "GET", endpoint+"/missing/")))

	count, err := testutil.GatherAndCount(registry, "codelearn_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
