package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "personia_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks cache hits/misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_cache_hits_total",
			Help: "Number of cache lookups by outcome",
		},
		[]string{"operation", "result"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// PersonOperations tracks person use cases by outcome
	PersonOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_person_operations_total",
			Help: "Number of person operations by outcome",
		},
		[]string{"operation", "status"},
	)

	// ValidationFailures tracks field validation failures
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_validation_failures_total",
			Help: "Number of field validation failures",
		},
		[]string{"field"},
	)

	// CEPLookups tracks postal-code lookups
	CEPLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_cep_lookups_total",
			Help: "Number of CEP lookups by outcome",
		},
		[]string{"result"},
	)

	// FormSubmissions tracks form session submissions
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_form_submissions_total",
			Help: "Number of form submissions by outcome",
		},
		[]string{"status"},
	)

	// ActiveFormSessions tracks live form sessions
	ActiveFormSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personia_form_sessions_active",
			Help: "Number of live form sessions",
		},
	)

	// AuditEvents tracks audit log writes
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personia_audit_events_total",
			Help: "Number of audit events by outcome",
		},
		[]string{"status"},
	)

	// ActiveConnections tracks in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personia_active_connections",
			Help: "Number of active connections",
		},
	)
)
