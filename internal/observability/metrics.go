// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingest metrics
	TradesFetched   prometheus.Counter
	TradesProcessed prometheus.Counter
	TradesDuplicate prometheus.Counter
	TradesInvalid   prometheus.Counter
	IngestErrors    *prometheus.CounterVec

	// Detection metrics
	SignalsFired    *prometheus.CounterVec
	TradesEvaluated prometheus.Counter

	// Alerting metrics
	AlertsFired    prometheus.Counter
	AlertsFiltered *prometheus.CounterVec
	Notifications  *prometheus.CounterVec

	// Attribution metrics
	AlertsResolved prometheus.Counter
	PeakUpdates    prometheus.Counter
	PendingAlerts  prometheus.Gauge

	// Latency metrics
	PollDuration   prometheus.Histogram
	ReviewDuration prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPoll   prometheus.Gauge
	LastSuccessfulReview prometheus.Gauge
	FeedCursor           prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "polymarket_insider"
	}

	return &Metrics{
		// Ingest metrics
		TradesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_fetched_total",
			Help:      "Total number of trades fetched from the feed",
		}),
		TradesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_processed_total",
			Help:      "Total number of trades fully processed",
		}),
		TradesDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_duplicate_total",
			Help:      "Total number of trades skipped as already seen",
		}),
		TradesInvalid: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_invalid_total",
			Help:      "Total number of feed records dropped at normalization",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingest errors by stage",
		}, []string{"stage"}),

		// Detection metrics
		SignalsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "signals_fired_total",
			Help:      "Total number of signals fired by name",
		}, []string{"signal"}),
		TradesEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "trades_evaluated_total",
			Help:      "Total number of trades run through the signal engine",
		}),

		// Alerting metrics
		AlertsFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "alerts_fired_total",
			Help:      "Total number of alerts fired",
		}),
		AlertsFiltered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "alerts_filtered_total",
			Help:      "Total number of candidate alerts rejected by gate",
		}, []string{"gate"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "notifications_total",
			Help:      "Total number of notifications sent by channel and status",
		}, []string{"channel", "status"}),

		// Attribution metrics
		AlertsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "alerts_resolved_total",
			Help:      "Total number of alerts resolved against market outcomes",
		}),
		PeakUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "peak_updates_total",
			Help:      "Total number of peak price advances recorded",
		}),
		PendingAlerts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "pending_alerts",
			Help:      "Number of alerts awaiting resolution",
		}),

		// Latency metrics
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "poll_duration_seconds",
			Help:      "Feed poll cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ReviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attribution",
			Name:      "review_duration_seconds",
			Help:      "Attribution review cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of last successful feed poll",
		}),
		LastSuccessfulReview: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_review_timestamp",
			Help:      "Unix timestamp of last successful attribution review",
		}),
		FeedCursor: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "feed_cursor_timestamp",
			Help:      "Trade timestamp of the polling cursor",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeProcessed increments the processed trade counter.
func RecordTradeProcessed() {
	DefaultMetrics.TradesProcessed.Inc()
}

// RecordSignalFired increments the fired counter for one signal.
func RecordSignalFired(signal string) {
	DefaultMetrics.SignalsFired.WithLabelValues(signal).Inc()
}

// RecordAlertFired increments the fired alert counter.
func RecordAlertFired() {
	DefaultMetrics.AlertsFired.Inc()
}

// RecordAlertFiltered increments the filtered counter for a gate.
func RecordAlertFiltered(gate string) {
	DefaultMetrics.AlertsFiltered.WithLabelValues(gate).Inc()
}

// RecordNotification records a notification attempt.
func RecordNotification(channel string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.Notifications.WithLabelValues(channel, status).Inc()
}

// RecordIngestError records an ingest error by stage.
func RecordIngestError(stage string) {
	DefaultMetrics.IngestErrors.WithLabelValues(stage).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
