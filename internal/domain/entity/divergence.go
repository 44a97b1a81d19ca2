package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y severidades de divergencias de producción.
const (
	DivergenceTypeIngredientShortage = "ingredient_shortage"

	DivergenceSeverityLow      = "low"
	DivergenceSeverityMedium   = "medium"
	DivergenceSeverityHigh     = "high"
	DivergenceSeverityCritical = "critical"
)

// ProductionDivergence discrepancia entre lo esperado y lo realmente consumido durante la ejecución.
type ProductionDivergence struct {
	ID                      string
	PlanID                  string
	ProductID               string
	Severity                string
	Type                    string
	ExpectedQuantityInUnits decimal.Decimal
	ActualQuantityInUnits   decimal.Decimal
	Description             string
	ReportedBy              string
	CreatedAt               time.Time
}
