package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del plan de producción.
const (
	PlanStatusDraft      = "draft"
	PlanStatusScheduled  = "scheduled"
	PlanStatusInProgress = "in_progress"
	PlanStatusCompleted  = "completed"
	PlanStatusCancelled  = "cancelled"
)

// Unidades de medida aceptadas para la cantidad de un plan.
const (
	UnitGrams     = "g"
	UnitKilograms = "kg"
	UnitUnits     = "un"
)

// planTransitions máquina de estados: draft → scheduled → in_progress → completed | cancelled.
var planTransitions = map[string][]string{
	PlanStatusDraft:      {PlanStatusScheduled, PlanStatusCancelled},
	PlanStatusScheduled:  {PlanStatusInProgress, PlanStatusCancelled},
	PlanStatusInProgress: {PlanStatusCompleted, PlanStatusCancelled},
}

// CanTransitionPlan indica si la máquina de estados permite pasar de from a to.
func CanTransitionPlan(from, to string) bool {
	for _, s := range planTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidPlanStatus indica si s es un estado conocido.
func IsValidPlanStatus(s string) bool {
	switch s {
	case PlanStatusDraft, PlanStatusScheduled, PlanStatusInProgress, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// ProductionPlan representa una orden de producción de una receta.
// Archived es independiente del estado.
type ProductionPlan struct {
	ID                    string
	RecipeID              string
	QuantityInUnits       decimal.Decimal
	UnitOfMeasure         string
	Status                string
	ActualQuantityInUnits *decimal.Decimal // se fija al completar
	ScheduledFor          *time.Time
	Notes                 string
	Archived              bool
	CreatedBy             string
	StartedAt             *time.Time
	CompletedAt           *time.Time
	CompletionClaim       string // token de la completación en curso; vacío si no hay ninguna
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
