package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/users/me", 200, "", time.Millisecond)
	m.IncCredentialWipe()
	m.ObservePoll("ok")
}

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("GET", "/users/me", 200, "", 10*time.Millisecond)
	m.ObserveRequest("GET", "/users/me", 401, "server", 10*time.Millisecond)
	m.IncCredentialWipe()
	m.ObservePoll("skipped")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/me", "401", "server")); got != 1 {
		t.Fatalf("401 requests=%v", got)
	}
	if got := testutil.ToFloat64(m.credentialWipes); got != 1 {
		t.Fatalf("wipes=%v", got)
	}
	if got := testutil.ToFloat64(m.polls.WithLabelValues("skipped")); got != 1 {
		t.Fatalf("skipped polls=%v", got)
	}
}
