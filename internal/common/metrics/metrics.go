// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DialogTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_dialog_transitions_total",
			Help: "Total number of accepted dialogue state transitions",
		},
		[]string{"from", "to"},
	)

	DialogReprompts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_dialog_reprompts_total",
			Help: "Total number of inputs rejected with a re-prompt",
		},
		[]string{"state"},
	)

	ReportsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_reports_built_total",
			Help: "Total number of reports assembled",
		},
		[]string{"mode"},
	)

	ReportsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_reports_failed_total",
			Help: "Total number of report builds that failed",
		},
		[]string{"mode", "error_code"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "forecast_report_duration_seconds",
			Help: "Duration of report assembly in seconds",
		},
		[]string{"mode"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_active_sessions",
			Help: "Number of conversations currently held in memory",
		},
	)

	TableCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_table_cache_lookups_total",
			Help: "Table cache lookups by result",
		},
		[]string{"result"},
	)
)
