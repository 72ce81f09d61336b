package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Write("add", "structured", nil)
	m.Write("add", "structured", errors.New("boom"))
	m.Write("add", "flat", nil)
	m.Fallback("add")
	m.SetDegraded(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("add", "structured", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("add", "structured", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded))

	m.SetDegraded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.degraded))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Write("add", "flat", nil)
		m.Fallback("add")
		m.SetDegraded(true)
	})
}
