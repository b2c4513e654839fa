package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the transport-level Prometheus metrics. Domain packages carry
// their own metric structs; this one only observes the HTTP surface.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the transport metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "givechain_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}
