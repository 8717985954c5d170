package mixer

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "urlwasher",
				Subsystem: "mixer",
				Name:      "requests_total",
				Help:      "Wash requests by HTTP status code.",
			},
			[]string{"code"},
		),
		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "urlwasher",
				Subsystem: "mixer",
				Name:      "request_duration_seconds",
				Help:      "Time spent answering wash requests.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	registry.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *metrics) handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		rec := &statusWriter{w, http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.requestDuration.Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(strconv.Itoa(rec.status)).Inc()
	}

	return http.HandlerFunc(fn)
}
