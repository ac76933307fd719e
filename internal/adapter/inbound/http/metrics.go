// Package http provides the HTTP transport adapter for the gateway.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for DocGate.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	LoginsTotal         *prometheus.CounterVec
	ProxyUpstreamErrors prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgate",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets, // 5ms to 10s
			},
			[]string{"method"},
		),
		LoginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docgate",
				Name:      "logins_total",
				Help:      "Total login attempts",
			},
			[]string{"result"}, // result=success/failure
		),
		ProxyUpstreamErrors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "docgate",
				Name:      "proxy_upstream_errors_total",
				Help:      "Total transport failures while forwarding to the backend",
			},
		),
	}
}

// RegisterAuditDrops registers a counter that reports audit records dropped
// due to backpressure. The count is owned by the audit service; this exposes
// its running total.
func RegisterAuditDrops(reg prometheus.Registerer, drops func() int64) {
	reg.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: "docgate",
			Name:      "audit_drops_total",
			Help:      "Total audit records dropped due to backpressure",
		},
		func() float64 { return float64(drops()) },
	))
}

// RegisterActiveSessions registers a gauge that reports the current number of
// sessions holding a cached credential.
func RegisterActiveSessions(reg prometheus.Registerer, size func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "docgate",
			Name:      "active_sessions",
			Help:      "Number of sessions holding a cached credential",
		},
		func() float64 { return float64(size()) },
	))
}
