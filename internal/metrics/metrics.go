package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Sampling metrics
	SamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackerd_usage_samples_total",
			Help: "Total foreground application samples taken",
		},
	)

	SampleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackerd_usage_sample_errors_total",
			Help: "Active window or tab queries that returned an error",
		},
	)

	BucketEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackerd_usage_bucket_entries",
			Help: "Number of (app, site) entries currently accumulated",
		},
	)

	// Reporting metrics
	FlushAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackerd_usage_flush_attempts_total",
			Help: "Usage report flush attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "empty"
	)

	// Idle metrics
	IdleReports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackerd_idle_reports_total",
			Help: "Idle threshold reports sent to the backend",
		},
	)

	// Screenshot metrics
	ScreenshotUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackerd_screenshot_uploads_total",
			Help: "Screenshot upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	// API metrics
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackerd_api_requests_total",
			Help: "Backend API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		SamplesTotal,
		SampleErrors,
		BucketEntries,
		FlushAttempts,
		IdleReports,
		ScreenshotUploads,
		APIRequests,
	)
}
