package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// HTTPRequestsTotal counts served requests by method, route and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycling_helper",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests served, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDurationSeconds is the handler latency as seen by the middleware.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recycling_helper",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"method", "route"})

	// UpstreamRequestsTotal counts Gemini calls by result.
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycling_helper",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total number of generateContent calls, labeled by result.",
	}, []string{"result"})

	// UpstreamDurationSeconds is the wall time of one generateContent call.
	UpstreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recycling_helper",
		Subsystem: "upstream",
		Name:      "duration_seconds",
		Help:      "Time spent waiting on generateContent, labeled by result.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"result"})

	// AnalyzeResultsTotal counts /analyze-image outcomes.
	AnalyzeResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycling_helper",
		Subsystem: "analyze",
		Name:      "results_total",
		Help:      "Total number of analyze-image requests, labeled by outcome.",
	}, []string{"outcome"})
)

// Upstream call results.
const (
	ResultOK             = "ok"
	ResultAPIError       = "api_error"
	ResultTransportError = "transport_error"
	ResultDecodeError    = "decode_error"
	ResultEncodeError    = "encode_error"
)

// Analyze outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeFallback      = "fallback"
	OutcomeBadRequest    = "bad_request"
	OutcomeNoAPIKey      = "no_api_key"
	OutcomeUpstreamError = "upstream_error"
	OutcomeInternalError = "internal_error"
)

// Register registers relay metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			UpstreamRequestsTotal,
			UpstreamDurationSeconds,
			AnalyzeResultsTotal,
		)
	})
}
