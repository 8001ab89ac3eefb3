// Package metrics provides Prometheus metrics for collaborator calls and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medassist"

// Collaborator names used as label values.
const (
	Recognition = "recognition"
	Translation = "translation"
	Synthesis   = "synthesis"
)

type Metrics struct {
	CollaboratorCalls    *prometheus.CounterVec
	CollaboratorLatency  *prometheus.HistogramVec
	CollaboratorFailures *prometheus.CounterVec
	IdentityShortCircuit prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	AudioBytesReceived prometheus.Counter
	AudioBytesProduced prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all metrics on reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CollaboratorCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "Calls made to external model collaborators",
		}, []string{"collaborator", "outcome"}),
		CollaboratorLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_duration_seconds",
			Help:      "Latency of external collaborator calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"collaborator"}),
		CollaboratorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_failures_total",
			Help:      "Failures reported to the notificator, by stage",
		}, []string{"stage"}),
		IdentityShortCircuit: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_identity_total",
			Help:      "Translations skipped because source equals target",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		AudioBytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Uploaded audio bytes accepted for transcription",
		}),
		AudioBytesProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_produced_total",
			Help:      "Synthesized audio bytes returned to clients",
		}),
		gatherer: reg,
	}
}

// Observe records one collaborator call.
func (m *Metrics) Observe(collaborator string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CollaboratorCalls.WithLabelValues(collaborator, outcome).Inc()
	m.CollaboratorLatency.WithLabelValues(collaborator).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
