// Package metrics exposes Prometheus instrumentation for the memory monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the memory monitor
type Metrics struct {
	// Memory gauges, in megabytes
	NativeHeapMB  prometheus.Gauge
	UnknownMB     prometheus.Gauge
	TotalMB       prometheus.Gauge
	UnreachableMB prometheus.Gauge
	NativeDeltaMB prometheus.Gauge

	// Sampling
	SamplesTaken   prometheus.Counter
	SampleFailures prometheus.Counter
	SampleDuration prometheus.Histogram
	GrowthWarnings *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		NativeHeapMB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "memmonitor_native_heap_megabytes",
			Help: "Native heap PSS of the monitored package",
		}),
		UnknownMB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "memmonitor_unknown_megabytes",
			Help: "Unknown PSS of the monitored package",
		}),
		TotalMB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "memmonitor_total_megabytes",
			Help: "Total PSS of the monitored package",
		}),
		UnreachableMB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "memmonitor_unreachable_megabytes",
			Help: "Unreachable native memory of the monitored package",
		}),
		NativeDeltaMB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "memmonitor_native_heap_delta_megabytes",
			Help: "Native heap change since the first sample",
		}),

		SamplesTaken: factory.NewCounter(prometheus.CounterOpts{
			Name: "memmonitor_samples_total",
			Help: "Total number of successful meminfo samples",
		}),
		SampleFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "memmonitor_sample_failures_total",
			Help: "Total number of failed meminfo samples",
		}),
		SampleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "memmonitor_sample_duration_seconds",
			Help:    "Time spent running dumpsys",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8), // 50ms to ~6s
		}),
		GrowthWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memmonitor_growth_warnings_total",
			Help: "Native heap growth warnings by severity",
		}, []string{"severity"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memmonitor_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memmonitor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memmonitor_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordSample updates the memory gauges from one successful sample
func (m *Metrics) RecordSample(nativeMB, unknownMB, totalMB, unreachableMB, nativeDeltaMB, durationSeconds float64) {
	m.SamplesTaken.Inc()
	m.SampleDuration.Observe(durationSeconds)
	m.NativeHeapMB.Set(nativeMB)
	m.UnknownMB.Set(unknownMB)
	m.TotalMB.Set(totalMB)
	m.UnreachableMB.Set(unreachableMB)
	m.NativeDeltaMB.Set(nativeDeltaMB)
}

// RecordSampleFailure increments the failed samples counter
func (m *Metrics) RecordSampleFailure(durationSeconds float64) {
	m.SampleFailures.Inc()
	m.SampleDuration.Observe(durationSeconds)
}

// RecordGrowthWarning increments the warning counter for a severity
func (m *Metrics) RecordGrowthWarning(severity string) {
	m.GrowthWarnings.WithLabelValues(severity).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
