// Package metrics exposes the gateway's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Checkout submission outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeRejected  = "rejected"
)

// Metrics groups every instrument the gateway records. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Requests            *prometheus.CounterVec
	LatencyMS           *prometheus.HistogramVec
	CartFallbacks       *prometheus.CounterVec
	CheckoutSubmissions *prometheus.CounterVec
	SessionsInvalidated prometheus.Counter
	EventsPublished     *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of gateway HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "Gateway HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 20000},
		}, []string{"route"}),
		CartFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "fallbacks_total",
			Help:      "Cart mutations that needed the legacy endpoint fallback.",
		}, []string{"operation"}),
		CheckoutSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Checkout submissions by outcome.",
		}, []string{"outcome"}),
		SessionsInvalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "invalidated_total",
			Help:      "Sessions ended because the backend rejected their token.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.CartFallbacks,
		m.CheckoutSubmissions,
		m.SessionsInvalidated,
		m.EventsPublished,
	)
	return m
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
}

// CartFallback counts one use of the legacy cart endpoint fallback.
func (m *Metrics) CartFallback(operation string) {
	if m == nil {
		return
	}
	m.CartFallbacks.WithLabelValues(operation).Inc()
}

// CheckoutSubmission counts one checkout submission outcome.
func (m *Metrics) CheckoutSubmission(outcome string) {
	if m == nil {
		return
	}
	m.CheckoutSubmissions.WithLabelValues(outcome).Inc()
}

// SessionInvalidated counts one backend-driven session invalidation.
func (m *Metrics) SessionInvalidated() {
	if m == nil {
		return
	}
	m.SessionsInvalidated.Inc()
}

// EventPublished counts one publish attempt.
func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}
