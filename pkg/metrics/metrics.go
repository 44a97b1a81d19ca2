package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Etiquetas.
const (
	LabelType       = "type"
	LabelSeverity   = "severity"
	LabelTransition = "transition"
	LabelStatus     = "status"
	LabelOutcome    = "outcome"
)

// Ledger de stock.
var (
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Ajustes de stock confirmados por tipo de movimiento",
		},
		[]string{LabelType},
	)

	StockAlertTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alert_transitions_total",
			Help: "Alertas de stock abiertas, actualizadas o resueltas",
		},
		[]string{LabelSeverity, LabelTransition},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_alert_notification_failures_total",
			Help: "Notificaciones de alertas que fallaron (no se propagan)",
		},
	)
)

// Producción.
var (
	RecipeResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_resolution_duration_seconds",
			Help:    "Duración de la resolución de requerimientos de una receta",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelOutcome},
	)

	PlanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "production_plan_transitions_total",
			Help: "Transiciones de estado de planes de producción",
		},
		[]string{LabelStatus},
	)

	AvailabilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "production_availability_checks_total",
			Help: "Verificaciones de disponibilidad por resultado",
		},
		[]string{LabelStatus},
	)

	Divergences = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "production_divergences_total",
			Help: "Divergencias registradas durante la ejecución",
		},
		[]string{LabelType, LabelSeverity},
	)
)

// HTTP.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta y código",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route", LabelStatus},
)
