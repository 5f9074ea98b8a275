package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics метрики исходящих запросов к backend.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookchat_api_requests_total",
			Help: "Number of requests sent to the backend API.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookchat_api_request_duration_seconds",
			Help:    "Latency of backend API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe безопасен для nil; code == 0 означает ошибку транспорта.
func (m *Metrics) observe(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(method, route, label).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}
