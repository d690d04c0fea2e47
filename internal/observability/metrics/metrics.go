package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricPrefix = "india_api_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	seriesQueries *prometheus.CounterVec
	seriesLatency *prometheus.HistogramVec

	sourceCalls   *prometheus.CounterVec
	sourceLatency *prometheus.HistogramVec

	ingestReadings *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	rateLimited prometheus.Counter
)

// Init registers service metrics and DB-backed gauges. The db may be
// nil when the fake source is active.
func Init(db *sql.DB, logger *zap.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status class",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		httpInFlight = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		)

		seriesQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "series_queries_total",
				Help: "Total series queries by kind and result",
			},
			[]string{"kind", "result"},
		)
		seriesLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "series_query_latency_seconds",
				Help:    "Series query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		sourceCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_calls_total",
				Help: "Total source adaptor calls by operation and result",
			},
			[]string{"op", "result"},
		)
		sourceLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "source_call_latency_seconds",
				Help:    "Source adaptor call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)

		ingestReadings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_readings_total",
				Help: "Total ingested generation readings by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Generation ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total forecast exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Forecast export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		rateLimited = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rate_limited_total",
				Help: "Total requests rejected by the rate limiter",
			},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			httpInFlight,
			seriesQueries,
			seriesLatency,
			sourceCalls,
			sourceLatency,
			ingestReadings,
			ingestLatency,
			exportTotal,
			exportLatency,
			rateLimited,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// IncHTTPInFlight tracks requests currently being served.
func IncHTTPInFlight() {
	if httpInFlight != nil {
		httpInFlight.Inc()
	}
}

// DecHTTPInFlight tracks requests currently being served.
func DecHTTPInFlight() {
	if httpInFlight != nil {
		httpInFlight.Dec()
	}
}

// ObserveSeriesQuery records a series query by kind and result.
func ObserveSeriesQuery(kind, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if seriesQueries != nil {
		seriesQueries.WithLabelValues(kind, result).Inc()
	}
	if seriesLatency != nil {
		seriesLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveSourceCall records a source adaptor call.
func ObserveSourceCall(op, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if sourceCalls != nil {
		sourceCalls.WithLabelValues(op, result).Inc()
	}
	if sourceLatency != nil {
		sourceLatency.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// ObserveIngest records an ingest call and how many readings it carried.
func ObserveIngest(result string, readings int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestReadings != nil && readings > 0 {
		ingestReadings.WithLabelValues(result).Add(float64(readings))
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncRateLimited increments the rate limiter rejection counter.
func IncRateLimited() {
	if rateLimited != nil {
		rateLimited.Inc()
	}
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
