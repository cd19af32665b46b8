package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aqs"

type metrics struct {
	pages    prometheus.Counter
	failures prometheus.Counter
	actions  *prometheus.CounterVec
	sessions prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		pages: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pages_rendered_total",
			Help:      "Interactive pages rendered",
		}),
		failures: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "build_failures_total",
			Help:      "Requests whose graph could not be built or rendered",
		}),
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_actions_total",
			Help:      "Exploration transitions by action and outcome",
		}, []string{"action", "status"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_open",
			Help:      "Exploration sessions held in memory",
		}),
	}
}
