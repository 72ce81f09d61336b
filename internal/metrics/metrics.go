package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts durable writes per backend and how often the tracker had to
// fall back to the flat store.
type Metrics struct {
	writes    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	degraded  prometheus.Gauge
}

// New registers the collectors on reg. A nil reg creates unregistered
// collectors, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		writes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthlog",
				Name:      "storage_writes_total",
				Help:      "Durable write attempts by operation, backend and result.",
			},
			[]string{"op", "backend", "result"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthlog",
				Name:      "storage_fallbacks_total",
				Help:      "Operations that fell back from the structured store to the flat store.",
			},
			[]string{"op"},
		),
		degraded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthlog",
			Name:      "storage_degraded",
			Help:      "1 when the structured store is unavailable for this session.",
		}),
	}
}

func (m *Metrics) Write(op, backend string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(op, backend, result).Inc()
}

func (m *Metrics) Fallback(op string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.degraded.Set(1)
		return
	}
	m.degraded.Set(0)
}
