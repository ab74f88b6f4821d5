package tasks

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts task outcomes per kind. A nil *Metrics records nothing.
type Metrics struct {
	started    *prometheus.CounterVec
	failed     *prometheus.CounterVec
	superseded *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the task collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "tasks_started_total",
			Help:      "Background tasks started, by kind.",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "tasks_failed_total",
			Help:      "Background tasks that ended in an error report, by kind.",
		}, []string{"kind"}),
		superseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "tasks_superseded_total",
			Help:      "Background task results dropped because a newer run of the same key was started.",
		}, []string{"kind"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "workbench",
			Name:      "tasks_in_flight",
			Help:      "Background tasks whose progress indicator is open.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workbench",
			Name:      "task_duration_seconds",
			Help:      "Time from task start to result delivery on the UI loop.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.started, m.failed, m.superseded, m.inFlight, m.duration)
	}
	return m
}

func (m *Metrics) taskStarted(kind string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(kind).Inc()
	m.inFlight.Inc()
}

func (m *Metrics) taskFinished(kind string, seconds float64, failed, superseded bool) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.duration.WithLabelValues(kind).Observe(seconds)
	switch {
	case superseded:
		m.superseded.WithLabelValues(kind).Inc()
	case failed:
		m.failed.WithLabelValues(kind).Inc()
	}
}
