package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "posu_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posu_geocode_lookups_total",
			Help: "Reverse geocoding lookups by source and outcome",
		},
		[]string{"source", "outcome"}, // outcome: hit, miss, error, open
	)

	GeocodeBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "posu_geocode_breaker_state",
			Help: "Circuit breaker state per geocoding provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posu_reports_generated_total",
			Help: "Reports persisted by type",
		},
		[]string{"type"},
	)

	ExportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posu_report_export_failures_total",
			Help: "Report export failures by format",
		},
		[]string{"format"},
	)

	AuditFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posu_audit_write_failures_total",
			Help: "Audit records that a sink failed to write",
		},
		[]string{"sink"},
	)
)
