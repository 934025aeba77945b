// Package metrics exposes Prometheus instrumentation for the context
// buffer service on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors. All record methods are nil-safe
// so components can run uninstrumented (tests, embedded use).
type Metrics struct {
	registry *prometheus.Registry

	messagesTotal   prometheus.Counter
	contextRequests prometheus.Counter
	summarizations  *prometheus.CounterVec
	evictions       prometheus.Counter
}

// New creates a Metrics set backed by a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contextd_messages_total",
			Help: "Messages appended across all conversation buffers.",
		}),
		contextRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contextd_context_requests_total",
			Help: "Formatted-context requests served.",
		}),
		summarizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contextd_summarizations_total",
			Help: "Summarization passes by result.",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contextd_evictions_total",
			Help: "Buffers evicted by the idle sweep.",
		}),
	}
	m.registry.MustRegister(m.messagesTotal, m.contextRequests, m.summarizations, m.evictions)
	return m
}

// RegisterActiveBuffers adds a gauge sampling the live buffer count.
// Registered separately because the manager is constructed after Metrics.
func (m *Metrics) RegisterActiveBuffers(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "contextd_active_buffers",
		Help: "Conversation buffers currently held in memory.",
	}, func() float64 {
		return float64(count())
	}))
}

// Handler returns the /metrics HTTP handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMessage counts one appended message.
func (m *Metrics) RecordMessage() {
	if m == nil {
		return
	}
	m.messagesTotal.Inc()
}

// RecordContextRequest counts one formatted-context request.
func (m *Metrics) RecordContextRequest() {
	if m == nil {
		return
	}
	m.contextRequests.Inc()
}

// RecordSummarization counts one summarization pass, labelled by result.
func (m *Metrics) RecordSummarization(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.summarizations.WithLabelValues(result).Inc()
}

// RecordEvictions counts buffers removed by one sweep pass.
func (m *Metrics) RecordEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evictions.Add(float64(n))
}
