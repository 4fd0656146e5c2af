package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

func TestMetricsRecorder(t *testing.T) {
	t.Parallel()

	m := NewMetrics(nil)
	m.AnalysisFinished("completed", 1500*time.Millisecond)
	m.AnalysisFinished("completed", 200*time.Millisecond)
	m.AnalysisFinished("document_not_found", time.Millisecond)
	m.TaskFailed(documents.AnalysisEntities)
	m.QueueDepth(3)

	if got := testutil.ToFloat64(m.analysesTotal.WithLabelValues("completed")); got != 2 {
		t.Fatalf("completed analyses = %v", got)
	}
	if got := testutil.ToFloat64(m.analysesTotal.WithLabelValues("document_not_found")); got != 1 {
		t.Fatalf("not found analyses = %v", got)
	}
	if got := testutil.ToFloat64(m.taskFailures.WithLabelValues("entities")); got != 1 {
		t.Fatalf("entity task failures = %v", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 3 {
		t.Fatalf("queue depth = %v", got)
	}
	if n := testutil.CollectAndCount(m.analysisDuration); n != 1 {
		t.Fatalf("expected one duration histogram, got %d", n)
	}
}

func TestNewMetrics_PrivateRegistries(t *testing.T) {
	t.Parallel()

	// two instances must not collide on registration
	a, b := NewMetrics(nil), NewMetrics(nil)
	if a.Registry() == b.Registry() {
		t.Fatal("expected separate registries")
	}
}
