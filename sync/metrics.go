package sync

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes per-loop counters for the debug HTTP listener (§6). Each
// Engine owns its own registry rather than registering into the global
// default one, so creating more than one Engine in a test process never
// collides.
type Metrics struct {
	Registry *prometheus.Registry

	updates   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	tipHeight prometheus.Gauge
}

func newMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd",
			Subsystem: "sync",
			Name:      "loop_updates_total",
			Help:      "Number of completed update passes per control loop.",
		}, []string{"loop"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd",
			Subsystem: "sync",
			Name:      "loop_errors_total",
			Help:      "Number of failed update passes per control loop.",
		}, []string{"loop"}),
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dwd",
			Subsystem: "sync",
			Name:      "tip_height",
			Help:      "Last chain height observed by the chain-head loop.",
		}),
	}
	m.Registry.MustRegister(m.updates, m.errors, m.tipHeight)
	return m
}

func (m *Metrics) observeUpdate(loop string, err error) {
	if err != nil {
		m.errors.WithLabelValues(loop).Inc()
		return
	}
	m.updates.WithLabelValues(loop).Inc()
}
