// Package metrics exposes Prometheus collectors for the HTTP layer and the
// billing workflows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medbill_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medbill_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Workflows counts billing workflows by name and outcome (ok, rejected, failed).
	Workflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medbill_workflows_total",
		Help: "Completed, rejected and failed workflows.",
	}, []string{"workflow", "outcome"})

	SalesAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medbill_sales_amount_total",
		Help: "Grand total of saved bills by payment mode.",
	}, []string{"payment_mode"})
)

// Outcome classifies a workflow error for the Workflows counter.
func Outcome(err error, rejected func(error) bool) string {
	switch {
	case err == nil:
		return "ok"
	case rejected(err):
		return "rejected"
	default:
		return "failed"
	}
}

// Middleware records request counts and latency. route resolves the
// templated route for a request so label cardinality stays bounded.
func Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := route(r)
			HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.statusCode)).Inc()
			HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
