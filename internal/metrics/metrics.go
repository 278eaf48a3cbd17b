// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallcontroller"

var (
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Events waiting in the queue",
		},
	)

	QueueEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Events accepted by the queue",
		},
		[]string{"kind"},
	)

	QueueDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "dropped_total",
			Help:      "Events dropped because the queue was full",
		},
		[]string{"kind", "path"},
	)

	Dispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "events_total",
			Help:      "Events delivered to the observer set",
		},
		[]string{"kind"},
	)

	ObserverPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "observer_panics_total",
			Help:      "Panics recovered while notifying an observer",
		},
		[]string{"observer"},
	)

	ObserverDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "observer_duration_seconds",
			Help:      "Time spent inside an observer notify call",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"observer"},
	)

	Suppressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reducer",
			Name:      "suppressed_total",
			Help:      "Readings swallowed by the frequency reducer",
		},
		[]string{"signal"},
	)

	MQTTPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mqtt",
			Name:      "published_total",
			Help:      "MQTT publishes by topic suffix and outcome",
		},
		[]string{"topic", "result"},
	)

	MQTTCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mqtt",
			Name:      "commands_total",
			Help:      "Commands received by topic and outcome",
		},
		[]string{"command", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		QueueDepth, QueueEnqueued, QueueDropped,
		Dispatched, ObserverPanics, ObserverDuration,
		Suppressed, MQTTPublished, MQTTCommands,
	)
}
