// Package metrics provides a Prometheus collector for client calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector counts calls and their outcomes. A nil *Collector is valid and
// records nothing. It is safe for concurrent use.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// New registers the collector's metrics on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Collector{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetcher_requests_total",
				Help: "Total number of calls made, by method, status code and host",
			},
			[]string{"method", "status_code", "host"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetcher_request_duration_seconds",
				Help:    "Duration of calls in seconds, interceptors and validation included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetcher_errors_total",
				Help: "Total number of failed calls, by failure kind",
			},
			[]string{"kind", "method", "host"},
		),
	}
}

// Observe records one finished call. kind is "ok" for success.
func (mc *Collector) Observe(method, host string, statusCode int, kind string, took time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode), host).Inc()
	mc.requestDuration.WithLabelValues(method, host).Observe(took.Seconds())

	if kind != "ok" {
		mc.errorsTotal.WithLabelValues(kind, method, host).Inc()
	}
}
