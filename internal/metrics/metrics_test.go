package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveState(t *testing.T) {
	m := New()
	m.ObserveState(1_720_569_600_000, 2, true, 24, 96)

	assert.Equal(t, 1_720_569_600.0, testutil.ToFloat64(m.SimulatedTime))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Speed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Playing))
	assert.Equal(t, 96.0, testutil.ToFloat64(m.WindowPoints.WithLabelValues("household")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveTick()
	m.ObserveTick()
	m.ObserveDataLoad("grid", nil)
	m.ObserveDataLoad("grid", errors.New("boom"))
	m.ObserveRender("png", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClockTicks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DataLoads.WithLabelValues("grid", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRenders.WithLabelValues("png", "success")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTick()
		m.ObserveState(0, 1, false, 0, 0)
		m.ObserveDataLoad("grid", nil)
		m.ObserveExport("xlsx", nil)
		m.StreamClientDelta("ws", 1)
	})
	assert.NotNil(t, m.Handler())
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
