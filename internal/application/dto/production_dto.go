package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchedulePlanRequest body para POST /api/production-plans.
// Si la disponibilidad no es suficiente, confirm_shortage debe ser true para programar de todos modos.
type SchedulePlanRequest struct {
	RecipeID        string          `json:"recipe_id" validate:"required"`
	QuantityInUnits decimal.Decimal `json:"quantity_in_units" validate:"gt=0"`
	UnitOfMeasure   string          `json:"unit_of_measure" validate:"required,oneof=g kg un"`
	Status          string          `json:"status" validate:"omitempty,oneof=draft scheduled"`
	ScheduledFor    *time.Time      `json:"scheduled_for,omitempty"`
	Notes           string          `json:"notes" validate:"max=500"`
	ConfirmShortage bool            `json:"confirm_shortage"`
}

// TransitionPlanRequest body para POST /api/production-plans/:id/status.
type TransitionPlanRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled cancelled"`
}

// ProductAvailabilityResponse fila por producto de una verificación de disponibilidad.
type ProductAvailabilityResponse struct {
	ProductID        string          `json:"product_id"`
	Tracked          bool            `json:"tracked"`
	RequiredInGrams  decimal.Decimal `json:"required_in_grams"`
	AvailableInGrams decimal.Decimal `json:"available_in_grams"`
	ShortageInGrams  decimal.Decimal `json:"shortage_in_grams"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
}

// SkippedSubtreeResponse subreceta omitida por rendimiento inválido.
type SkippedSubtreeResponse struct {
	RecipeID string   `json:"recipe_id"`
	Path     []string `json:"path"`
	Reason   string   `json:"reason"`
}

// AvailabilityResponse resultado de GET /api/recipes/:id/availability.
type AvailabilityResponse struct {
	RecipeID              string                        `json:"recipe_id"`
	Quantity              decimal.Decimal               `json:"quantity"`
	Unit                  string                        `json:"unit"`
	Status                string                        `json:"status"`
	Products              []ProductAvailabilityResponse `json:"products"`
	TotalRequiredInGrams  decimal.Decimal               `json:"total_required_in_grams"`
	TotalAvailableInGrams decimal.Decimal               `json:"total_available_in_grams"`
	TotalShortageInGrams  decimal.Decimal               `json:"total_shortage_in_grams"`
	EstimatedCost         decimal.Decimal               `json:"estimated_cost"`
	Skipped               []SkippedSubtreeResponse      `json:"skipped,omitempty"`
}

// BreakdownNodeResponse nodo del árbol de desglose.
type BreakdownNodeResponse struct {
	Kind            string                   `json:"kind"`
	ReferenceID     string                   `json:"reference_id"`
	IngredientGrams decimal.Decimal          `json:"ingredient_grams"`
	RequiredInGrams decimal.Decimal          `json:"required_in_grams"`
	BatchFactor     *decimal.Decimal         `json:"batch_factor,omitempty"`
	Skipped         bool                     `json:"skipped,omitempty"`
	Children        []*BreakdownNodeResponse `json:"children,omitempty"`
}

// RequirementResponse requerimiento total de un producto.
type RequirementResponse struct {
	ProductID       string          `json:"product_id"`
	RequiredInGrams decimal.Decimal `json:"required_in_grams"`
}

// BreakdownResponse resultado de GET /api/recipes/:id/breakdown.
type BreakdownResponse struct {
	Requirements []RequirementResponse    `json:"requirements"`
	Tree         *BreakdownNodeResponse   `json:"tree"`
	Skipped      []SkippedSubtreeResponse `json:"skipped,omitempty"`
}

// ProductionPlanResponse salida de un plan.
type ProductionPlanResponse struct {
	ID                    string           `json:"id"`
	RecipeID              string           `json:"recipe_id"`
	QuantityInUnits       decimal.Decimal  `json:"quantity_in_units"`
	UnitOfMeasure         string           `json:"unit_of_measure"`
	Status                string           `json:"status"`
	ActualQuantityInUnits *decimal.Decimal `json:"actual_quantity_in_units,omitempty"`
	ScheduledFor          *time.Time       `json:"scheduled_for,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	Archived              bool             `json:"archived"`
	CreatedBy             string           `json:"created_by"`
	StartedAt             *time.Time       `json:"started_at,omitempty"`
	CompletedAt           *time.Time       `json:"completed_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ProductionPlanListResponse listado paginado de planes.
type ProductionPlanListResponse struct {
	Items []ProductionPlanResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// IngredientShortageResponse faltante registrado al programar.
type IngredientShortageResponse struct {
	ProductID        string          `json:"product_id"`
	RequiredInGrams  decimal.Decimal `json:"required_in_grams"`
	AvailableInGrams decimal.Decimal `json:"available_in_grams"`
	ShortageInGrams  decimal.Decimal `json:"shortage_in_grams"`
}

// AvailabilityRecordResponse registro de disponibilidad de un plan.
type AvailabilityRecordResponse struct {
	ID                    string                       `json:"id"`
	PlanID                string                       `json:"plan_id"`
	Status                string                       `json:"status"`
	Shortages             []IngredientShortageResponse `json:"shortages"`
	TotalRequiredInGrams  decimal.Decimal              `json:"total_required_in_grams"`
	TotalShortageInGrams  decimal.Decimal              `json:"total_shortage_in_grams"`
	EstimatedCost         decimal.Decimal              `json:"estimated_cost"`
	ConfirmedBy           string                       `json:"confirmed_by,omitempty"`
	ActualConsumedInGrams *decimal.Decimal             `json:"actual_consumed_in_grams,omitempty"`
	ActualShortageInGrams *decimal.Decimal             `json:"actual_shortage_in_grams,omitempty"`
	ExecutionStartedAt    *time.Time                   `json:"execution_started_at,omitempty"`
	ExecutionCompletedAt  *time.Time                   `json:"execution_completed_at,omitempty"`
}

// ScheduleResponse plan creado y registro si hubo faltantes.
type ScheduleResponse struct {
	Plan   ProductionPlanResponse      `json:"plan"`
	Record *AvailabilityRecordResponse `json:"availability_record,omitempty"`
}

// DivergenceResponse divergencia de producción.
type DivergenceResponse struct {
	ID                      string          `json:"id"`
	PlanID                  string          `json:"plan_id"`
	ProductID               string          `json:"product_id"`
	Severity                string          `json:"severity"`
	Type                    string          `json:"type"`
	ExpectedQuantityInUnits decimal.Decimal `json:"expected_quantity_in_units"`
	ActualQuantityInUnits   decimal.Decimal `json:"actual_quantity_in_units"`
	Description             string          `json:"description"`
	ReportedBy              string          `json:"reported_by"`
	CreatedAt               time.Time       `json:"created_at"`
}

// ConsumptionResponse consumo real de un producto.
type ConsumptionResponse struct {
	ProductID        string          `json:"product_id"`
	StockItemID      string          `json:"stock_item_id"`
	RequiredInGrams  decimal.Decimal `json:"required_in_grams"`
	ConsumedInGrams  decimal.Decimal `json:"consumed_in_grams"`
	ShortfallInGrams decimal.Decimal `json:"shortfall_in_grams"`
	MovementID       string          `json:"movement_id,omitempty"`
}

// CompletionResponse resultado de POST /api/production-plans/:id/complete.
type CompletionResponse struct {
	Plan             ProductionPlanResponse      `json:"plan"`
	Record           *AvailabilityRecordResponse `json:"availability_record,omitempty"`
	Divergences      []DivergenceResponse        `json:"divergences"`
	Consumption      []ConsumptionResponse       `json:"consumption"`
	FulfillmentRatio decimal.Decimal             `json:"fulfillment_ratio"`
}

// ShortageConfirmationResponse 409 cuando se intenta programar con faltantes sin confirmar.
type ShortageConfirmationResponse struct {
	Code         string               `json:"code"`
	Message      string               `json:"message"`
	Availability AvailabilityResponse `json:"availability"`
}
