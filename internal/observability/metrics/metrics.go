package metrics

import "github.com/prometheus/client_golang/prometheus"

// SimulationMetrics exposes counters/histograms for consultation sessions.
type SimulationMetrics struct {
	sessionsStarted *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	rejectedTotal   *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	finalScore      prometheus.Histogram
}

func NewSimulationMetrics(reg prometheus.Registerer) *SimulationMetrics {
	m := &SimulationMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultsim",
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Sessions started, by how they were started",
		}, []string{"kind"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultsim",
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Applied actions by action id",
		}, []string{"action"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultsim",
			Subsystem: "session",
			Name:      "rejected_actions_total",
			Help:      "Actions rejected as not eligible, by phase",
		}, []string{"phase"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consultsim",
			Subsystem: "session",
			Name:      "outcomes_total",
			Help:      "Terminal outcomes by ending and severity",
		}, []string{"ending", "severity"}),
		finalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "consultsim",
			Subsystem: "session",
			Name:      "final_score",
			Help:      "Safety score at the end of a session",
			Buckets:   []float64{-100, -50, 0, 25, 50, 80, 100, 125},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.actionsTotal, m.rejectedTotal, m.outcomesTotal, m.finalScore)
	return m
}

func (m *SimulationMetrics) ObserveSessionStarted(kind string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(kind).Inc()
}

func (m *SimulationMetrics) ObserveAction(action string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action).Inc()
}

func (m *SimulationMetrics) ObserveRejected(phase string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(phase).Inc()
}

// ObserveOutcome records a finished session. ending is the drug chosen or
// "senior_consult"; severity is empty for senior consults.
func (m *SimulationMetrics) ObserveOutcome(ending, severity string, score int) {
	if m == nil {
		return
	}
	if severity == "" {
		severity = "none"
	}
	m.outcomesTotal.WithLabelValues(ending, severity).Inc()
	m.finalScore.Observe(float64(score))
}
