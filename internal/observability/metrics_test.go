package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/api/jobs", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/api/jobs", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/jobs/:id", "GET", "NOT_FOUND")
	m.RecordTransition("pending", "Accepted for interview")
	m.RecordNotification("queued")
	m.RecordNotification("sent")
	m.RecordApplication()

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/jobs", "GET", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("/api/jobs/:id", "GET", "NOT_FOUND")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("pending", "Accepted for interview")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("sent")); got != 1 {
		t.Errorf("notifications sent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.applications); got != 1 {
		t.Errorf("applications = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.latency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordTransition("a", "b")
	m.RecordNotification("sent")
	m.RecordApplication()
	m.TrackQueueDepth(func() int { return 1 })
}

func TestMetrics_QueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	depth := 3
	m.TrackQueueDepth(func() int { return depth })

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var got float64 = -1
	for _, family := range families {
		if family.GetName() == "jobboard_notification_queue_depth" {
			got = family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	if got != 3 {
		t.Fatalf("queue depth = %v, want 3", got)
	}
}
