package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	applicationTransitions *prometheus.CounterVec
	feeTransitions         *prometheus.CounterVec
	feesGenerated          *prometheus.CounterVec
	billingRunSeconds      prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		applicationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_application_transitions_total",
			Help: "Enrollment application state transitions by target state.",
		}, []string{"to"})

		feeTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_fee_transitions_total",
			Help: "Monthly fee state transitions by target state.",
		}, []string{"to"})

		feesGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_fees_generated_total",
			Help: "Monthly fee generation outcomes per enrollment.",
		}, []string{"result"})

		billingRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_billing_run_seconds",
			Help:    "Duration of monthly fee generation runs.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			applicationTransitions,
			feeTransitions,
			feesGenerated,
			billingRunSeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ApplicationTransitions exposes the application transition counter.
func ApplicationTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return applicationTransitions
}

// FeeTransitions exposes the fee transition counter.
func FeeTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return feeTransitions
}

// FeesGenerated exposes the per-enrollment generation outcome counter.
func FeesGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return feesGenerated
}

// BillingRunDuration exposes the billing batch duration histogram.
func BillingRunDuration() prometheus.Histogram {
	RegisterMetrics()
	return billingRunSeconds
}
