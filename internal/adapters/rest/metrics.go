package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records backend calls per resource. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend requests by resource, method and status code.",
		}, []string{"resource", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency by resource and method.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"resource", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "client",
			Name:      "in_flight_requests",
			Help:      "Backend requests currently waiting for a response.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Transport wraps next so in-flight requests are tracked.
func (m *Metrics) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight, next)
}

func (m *Metrics) observe(resource, method string, code int, start time.Time) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(resource, method, label).Inc()
	m.duration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
}
