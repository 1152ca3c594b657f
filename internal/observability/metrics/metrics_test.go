package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSimulationMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSimulationMetrics(reg)

	m.ObserveSessionStarted("new")
	m.ObserveAction("current_meds")
	m.ObserveAction("current_meds")
	m.ObserveRejected("presentation")
	m.ObserveOutcome("acetaminophen", "optimal", 125)
	m.ObserveOutcome("senior_consult", "", 70)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actionsTotal.WithLabelValues("current_meds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejectedTotal.WithLabelValues("presentation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomesTotal.WithLabelValues("senior_consult", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("new")))
}

func TestSimulationMetricsDefaultRegistry(t *testing.T) {
	m := NewSimulationMetrics(nil)
	m.ObserveAction("begin")
	prometheus.DefaultRegisterer.Unregister(m.sessionsStarted)
	prometheus.DefaultRegisterer.Unregister(m.actionsTotal)
	prometheus.DefaultRegisterer.Unregister(m.rejectedTotal)
	prometheus.DefaultRegisterer.Unregister(m.outcomesTotal)
	prometheus.DefaultRegisterer.Unregister(m.finalScore)
}

func TestSimulationMetricsNilSafe(t *testing.T) {
	var m *SimulationMetrics
	m.ObserveSessionStarted("new")
	m.ObserveAction("begin")
	m.ObserveRejected("start")
	m.ObserveOutcome("nsaid", "fatal", -60)
}
