package authgate

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}
	gate := newTestGate(t, WithMetrics(metrics))
	ctx := context.Background()

	p, err := gate.Authenticate(ctx, bearer(tokenFor(t, "7", time.Now().Add(time.Hour))))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	_, _ = gate.Authenticate(ctx, "")
	_, _ = gate.Authenticate(ctx, bearer(tokenFor(t, "7", time.Now().Add(-time.Hour))))
	_ = gate.AuthorizeOwner(ctx, p, ownerIs(7))
	_ = gate.AuthorizeOwner(ctx, p, ownerIs(9))

	checks := []struct {
		counter *prometheus.CounterVec
		label   string
		want    float64
	}{
		{metrics.authentications, "ok", 1},
		{metrics.authentications, "missing_header", 1},
		{metrics.authentications, "expired", 1},
		{metrics.authorizations, "ok", 1},
		{metrics.authorizations, "forbidden", 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.counter.WithLabelValues(c.label)); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.label, c.want, got)
		}
	}
	if n := testutil.CollectAndCount(metrics.latency); n != 1 {
		t.Errorf("expected one latency histogram, got %d", n)
	}
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.observeAuthentication(nil, time.Millisecond)
	m.observeAuthorization(NewAuthFailure(KindForbidden, "", nil))
}
