package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Alerting metrics
var (
	// RunsTotal counts notifier runs by outcome (alerted, quiet, dry_run, error)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_runs_total",
			Help: "Total number of notifier runs by outcome",
		},
		[]string{"outcome"},
	)

	// ReadingsEvaluated counts hourly readings passed through the evaluator
	ReadingsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_readings_evaluated_total",
			Help: "Total number of hourly forecast readings evaluated",
		},
	)

	// ConditionsTriggered counts aggregated alert conditions by kind
	ConditionsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_conditions_triggered_total",
			Help: "Alert conditions found in a forecast window",
		},
		[]string{"condition"},
	)

	// DeliveriesTotal counts per-recipient delivery attempts
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_deliveries_total",
			Help: "Notification delivery attempts by status",
		},
		[]string{"status"},
	)

	// ForecastFetchDuration tracks forecast API latency
	ForecastFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatheralert_forecast_fetch_duration_seconds",
			Help:    "Duration of forecast API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// EventsPublished counts run events written to the stream
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_events_published_total",
			Help: "Run events published to the event stream",
		},
		[]string{"status"},
	)
)

// Database metrics
var (
	// DBQueriesTotal tracks the total number of database queries
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// DBQueryDuration tracks the duration of database queries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of established connections both in use and idle",
		},
	)

	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of connections currently in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle connections",
		},
	)

	// AppStartTime records when the process started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatheralert_start_time_seconds",
			Help: "Unix timestamp of when the process started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// RecordRun records the outcome of one notifier run
func RecordRun(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
}

// RecordConditions records which alert slots a run filled
func RecordConditions(cold, wind, rain bool) {
	for name, set := range map[string]bool{"cold": cold, "wind": wind, "rain": rain} {
		if set {
			ConditionsTriggered.WithLabelValues(name).Inc()
		}
	}
}

// RecordDelivery records one recipient's delivery result
func RecordDelivery(err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	DeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordForecastFetch records a forecast API call
func RecordForecastFetch(status string, duration time.Duration) {
	ForecastFetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordEventPublished records a stream publish attempt
func RecordEventPublished(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(status).Inc()
}

// RecordDBQuery records a database query execution
func RecordDBQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(open, inUse, idle int) {
	DBConnectionsOpen.Set(float64(open))
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}

// Push sends the alerting metrics to a Pushgateway.
func Push(ctx context.Context, gatewayURL, job string) error {
	pusher := push.New(gatewayURL, job).
		Collector(RunsTotal).
		Collector(ReadingsEvaluated).
		Collector(ConditionsTriggered).
		Collector(DeliveriesTotal).
		Collector(ForecastFetchDuration).
		Collector(EventsPublished)

	if err := pusher.AddContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
