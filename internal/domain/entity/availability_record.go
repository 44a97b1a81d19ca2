package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del registro de disponibilidad. Solo avanza: sufficient/insufficient → fulfilled/reconciled.
const (
	AvailabilitySufficient   = "sufficient"
	AvailabilityInsufficient = "insufficient"
	AvailabilityFulfilled    = "fulfilled"
	AvailabilityReconciled   = "reconciled"
)

// IngredientShortage faltante de un producto al momento de evaluar disponibilidad.
type IngredientShortage struct {
	ProductID        string
	RequiredInGrams  decimal.Decimal
	AvailableInGrams decimal.Decimal
	ShortageInGrams  decimal.Decimal
}

// ProductionPlanAvailabilityRecord snapshot de la evaluación de disponibilidad hecha al
// programar un plan con faltantes; se concilia luego contra el consumo real.
type ProductionPlanAvailabilityRecord struct {
	ID                    string
	PlanID                string
	Status                string
	Shortages             []IngredientShortage
	TotalRequiredInGrams  decimal.Decimal
	TotalShortageInGrams  decimal.Decimal
	EstimatedCost         decimal.Decimal
	ConfirmedBy           string
	ActualConsumedInGrams *decimal.Decimal
	ActualShortageInGrams *decimal.Decimal
	ExecutionStartedAt    *time.Time
	ExecutionCompletedAt  *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsSettled indica si el registro ya fue conciliado (estado terminal).
func (r *ProductionPlanAvailabilityRecord) IsSettled() bool {
	return r.Status == AvailabilityFulfilled || r.Status == AvailabilityReconciled
}
