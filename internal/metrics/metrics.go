package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Database metrics
var (
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database statements executed",
		},
		[]string{"op", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
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
)

// Dashboard metrics
var (
	DashboardBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_builds_total",
			Help: "Total number of dashboard builds by outcome",
		},
		[]string{"status"},
	)

	DashboardBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_build_duration_seconds",
			Help:    "Time to load the table and build every figure",
			Buckets: prometheus.DefBuckets,
		},
	)

	MonthlyRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monthly_records",
			Help: "Number of monthly records in the last loaded table",
		},
	)

	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Monthly observations received over MQTT by outcome",
		},
		[]string{"status"},
	)
)

var (
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nepal_temperature_app_info",
			Help: "Application information (always 1)",
		},
	)

	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nepal_temperature_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records one served request. route is the mux pattern, not
// the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery records a database statement execution
func RecordDBQuery(op string, duration time.Duration, err error) {
	DBQueriesTotal.WithLabelValues(op, status(err)).Inc()
	DBQueryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(open, inUse, idle int) {
	DBConnectionsOpen.Set(float64(open))
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordDashboardBuild records one dashboard build and the table size it used.
func RecordDashboardBuild(records int, duration time.Duration, err error) {
	DashboardBuildsTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	DashboardBuildDuration.Observe(duration.Seconds())
	MonthlyRecords.Set(float64(records))
}

// RecordIngest records the outcome of one MQTT observation.
func RecordIngest(err error) {
	IngestMessagesTotal.WithLabelValues(status(err)).Inc()
}
