package metrics

import (
	"errors"
	"sync"
	"time"

	"stablevault/core"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics operation and event counters
type Metrics struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
	events   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	once     sync.Once
	registry *Metrics
)

// Default process wide metrics registered with the default prometheus registry
func Default() *Metrics {
	once.Do(func() {
		registry = New(prometheus.DefaultRegisterer)
	})

	return registry
}

// New metrics registered with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablevault",
			Subsystem: "ops",
			Name:      "total",
			Help:      "Count of protocol operations by result.",
		}, []string{"op", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablevault",
			Subsystem: "ops",
			Name:      "failures_total",
			Help:      "Count of rejected operations by error name and kind.",
		}, []string{"op", "error", "kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablevault",
			Subsystem: "events",
			Name:      "total",
			Help:      "Count of emitted events by kind and category.",
		}, []string{"kind", "category"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stablevault",
			Subsystem: "ops",
			Name:      "duration_seconds",
			Help:      "Time spent inside the serialized executor.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(m.ops, m.failures, m.events, m.latency)
	}

	return m
}

// Observe records one finished operation
func (m *Metrics) Observe(op string, dur time.Duration, err error, events []*core.Event) {
	if m == nil {
		return
	}

	m.latency.WithLabelValues(op).Observe(dur.Seconds())

	if err != nil {
		m.ops.WithLabelValues(op, "failure").Inc()

		name := "internal"
		var e *core.Error
		if errors.As(err, &e) {
			name = e.Name
		}
		m.failures.WithLabelValues(op, name, core.KindOf(err).String()).Inc()
		return
	}

	m.ops.WithLabelValues(op, "success").Inc()
	for _, ev := range events {
		m.events.WithLabelValues(string(ev.Kind), string(ev.Category)).Inc()
	}
}
