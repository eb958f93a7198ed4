package authgate

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const resultOK = "ok"

// Metrics records gate decisions. A nil *Metrics records nothing.
type Metrics struct {
	authentications *prometheus.CounterVec
	authorizations  *prometheus.CounterVec
	latency         prometheus.Histogram
}

// NewMetrics creates the gate collectors and registers them on reg
// (prometheus.DefaultRegisterer when reg is nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_authentications_total",
			Help: "Authentication attempts by result",
		}, []string{"result"}),
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_authorizations_total",
			Help: "Ownership decisions by result",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "authgate_authentication_duration_seconds",
			Help:    "Time spent resolving a principal",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		}),
	}
	for _, c := range []prometheus.Collector{m.authentications, m.authorizations, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeAuthentication(err error, latency time.Duration) {
	if m == nil {
		return
	}
	m.authentications.WithLabelValues(resultLabel(err)).Inc()
	m.latency.Observe(latency.Seconds())
}

func (m *Metrics) observeAuthorization(err error) {
	if m == nil {
		return
	}
	m.authorizations.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return resultOK
	}
	kind := KindOf(err)
	if kind == "" {
		return "unknown"
	}
	return strings.ToLower(string(kind))
}
