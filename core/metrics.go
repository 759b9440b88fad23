package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are registered on a registry owned by the DB, so several DBs
// can live in one process.
type Metrics struct {
	registry       *prometheus.Registry
	valuesAppended *prometheus.CounterVec
	valuesRejected *prometheus.CounterVec
	flushes        prometheus.Counter
	bins           *prometheus.GaugeVec
	streams        prometheus.Gauge
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		valuesAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamhist",
			Name:      "values_appended_total",
			Help:      "Values inserted into a stream histogram.",
		}, []string{"stream"}),
		valuesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamhist",
			Name:      "values_rejected_total",
			Help:      "Non-finite values refused by a stream.",
		}, []string{"stream"}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamhist",
			Name:      "flushes_total",
			Help:      "Stream states written to the backend.",
		}),
		bins: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "streamhist",
			Name:      "bins",
			Help:      "Bins currently held by a stream histogram.",
		}, []string{"stream"}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamhist",
			Name:      "streams",
			Help:      "Open streams.",
		}),
	}
	metrics.registry.MustRegister(
		metrics.valuesAppended,
		metrics.valuesRejected,
		metrics.flushes,
		metrics.bins,
		metrics.streams)
	return metrics
}

func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

func (metrics *Metrics) forgetStream(name string) {
	metrics.valuesAppended.DeleteLabelValues(name)
	metrics.valuesRejected.DeleteLabelValues(name)
	metrics.bins.DeleteLabelValues(name)
}
