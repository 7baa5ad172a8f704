package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce     sync.Once
	requestsTotal    *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the attendance API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_requests_total",
			Help: "Total number of attendance API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_latency_seconds",
			Help:    "Latency distribution for attendance API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_errors_total",
			Help: "Total number of error responses returned by attendance endpoints.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_submissions_total",
			Help: "Total number of confirmed attendance submissions by outcome.",
		}, []string{"result"})

		exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_exports_total",
			Help: "Total number of weekly CSV exports generated.",
		}, []string{"locale"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, submissionsTotal, exportsTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Submissions exposes the counter for attendance batch submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Exports exposes the counter for generated CSV exports.
func Exports() *prometheus.CounterVec {
	RegisterMetrics()
	return exportsTotal
}
