package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCartMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetricsWithRegisterer(reg)

	if metrics == nil {
		t.Fatal("NewCartMetricsWithRegisterer should not return nil")
	}
	if metrics.mutations == nil || metrics.promo == nil {
		t.Error("mutation counters should not be nil")
	}
	if metrics.fetchBatches == nil || metrics.fetchDuration == nil || metrics.staleFetches == nil {
		t.Error("fetch metrics should not be nil")
	}
	if metrics.storageErrors == nil || metrics.notifications == nil {
		t.Error("storage and notification metrics should not be nil")
	}
}

func TestNewCartMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewCartMetricsWithRegisterer(reg)
	second := NewCartMetricsWithRegisterer(reg)

	first.RecordNotification()
	second.RecordNotification()

	if got := testutil.ToFloat64(first.notifications); got != 2 {
		t.Errorf("expected shared counter value 2, got %f", got)
	}
}

func TestRecordMutation(t *testing.T) {
	metrics := NewCartMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordMutation("increment", true)
	metrics.RecordMutation("increment", false)
	metrics.RecordMutation("increment", true)

	if got := testutil.ToFloat64(metrics.mutations.WithLabelValues("increment", ResultChanged)); got != 2 {
		t.Errorf("expected 2 changed increments, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.mutations.WithLabelValues("increment", ResultUnchanged)); got != 1 {
		t.Errorf("expected 1 unchanged increment, got %f", got)
	}
}

func TestRecordFetchBatch(t *testing.T) {
	metrics := NewCartMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordFetchBatch(ResultSuccess, 100*time.Millisecond)
	metrics.RecordFetchBatch(ResultFailure, 500*time.Millisecond)
	metrics.RecordFetchBatch(ResultSkipped, 0)

	metric := &dto.Metric{}
	if err := metrics.fetchDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples, got %d", metric.Histogram.GetSampleCount())
	}

	sum := metric.Histogram.GetSampleSum()
	if sum < 0.5 || sum > 0.7 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
	if got := testutil.ToFloat64(metrics.fetchBatches.WithLabelValues(ResultSkipped)); got != 1 {
		t.Errorf("expected 1 skipped batch, got %f", got)
	}
}

func TestRecordStorageErrorAndStaleFetch(t *testing.T) {
	metrics := NewCartMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordStorageError("get")
	metrics.RecordStorageError("set")
	metrics.RecordStorageError("set")
	metrics.RecordStaleFetch()

	if got := testutil.ToFloat64(metrics.storageErrors.WithLabelValues("set")); got != 2 {
		t.Errorf("expected 2 set errors, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.staleFetches); got != 1 {
		t.Errorf("expected 1 stale fetch, got %f", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var metrics *CartMetrics

	metrics.RecordMutation("decrement", true)
	metrics.RecordPromoSubmission("applied")
	metrics.RecordFetchBatch(ResultSuccess, time.Second)
	metrics.RecordStaleFetch()
	metrics.RecordStorageError("get")
	metrics.RecordNotification()
}
