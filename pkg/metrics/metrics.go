// Package metrics registers the checkout engine's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	Submissions *prometheus.CounterVec
	Quotes      prometheus.Counter
	BackendMS   *prometheus.HistogramVec
}

func NewCheckoutMetrics(service string) *CheckoutMetrics {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "submissions_total",
		Help:      "Order submission attempts by outcome.",
	}, []string{"outcome"})
	quotes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "quotes_total",
		Help:      "Draft quote computations.",
	})
	backend := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "backend_call_duration_ms",
		Help:      "Storefront backend call latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"call"})

	prometheus.MustRegister(submissions, quotes, backend)
	return &CheckoutMetrics{Submissions: submissions, Quotes: quotes, BackendMS: backend}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
