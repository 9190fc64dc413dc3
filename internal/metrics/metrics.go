// Package metrics exposes publisher counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claimstream"

// Metrics holds the collectors of one simulator process. All methods are
// no-ops on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	EventsSent      prometheus.Counter
	BatchesSent     prometheus.Counter
	OverflowFlushes prometheus.Counter
	SendFailures    prometheus.Counter
	SendDuration    prometheus.Histogram
	State           prometheus.Gauge
	BatchSize       prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_sent_total",
			Help:      "Claim events handed to the transport and acknowledged.",
		}),
		BatchesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_sent_total",
			Help:      "Batches delivered by the transport.",
		}),
		OverflowFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overflow_flushes_total",
			Help:      "Early flushes caused by a full transport batch.",
		}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Batch sends that returned an error.",
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Latency of batch sends.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_state",
			Help:      "Publisher loop state: 0 running, 1 draining, 2 stopped.",
		}),
		BatchSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Records drawn per publish cycle.",
		}),
	}
	m.registry.MustRegister(
		m.EventsSent,
		m.BatchesSent,
		m.OverflowFlushes,
		m.SendFailures,
		m.SendDuration,
		m.State,
		m.BatchSize,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSend records a successful send of n events.
func (m *Metrics) ObserveSend(n int, took time.Duration) {
	if m == nil {
		return
	}
	m.EventsSent.Add(float64(n))
	m.BatchesSent.Inc()
	m.SendDuration.Observe(took.Seconds())
}

// ObserveSendFailure records a failed send.
func (m *Metrics) ObserveSendFailure(took time.Duration) {
	if m == nil {
		return
	}
	m.SendFailures.Inc()
	m.SendDuration.Observe(took.Seconds())
}

// ObserveOverflow records an early flush.
func (m *Metrics) ObserveOverflow() {
	if m == nil {
		return
	}
	m.OverflowFlushes.Inc()
}

// SetState publishes the loop state.
func (m *Metrics) SetState(state int) {
	if m == nil {
		return
	}
	m.State.Set(float64(state))
}

// SetBatchSize publishes the configured cycle size.
func (m *Metrics) SetBatchSize(n int) {
	if m == nil {
		return
	}
	m.BatchSize.Set(float64(n))
}
