package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock-items/:id/adjustments.
// En type=adjustment, quantity_in_grams es el saldo absoluto objetivo.
type AdjustStockRequest struct {
	Type            string           `json:"type" validate:"required,oneof=increment decrement adjustment initial"`
	QuantityInGrams decimal.Decimal  `json:"quantity_in_grams" validate:"gt=0"`
	TotalCost       *decimal.Decimal `json:"total_cost,omitempty"`
	Reference       string           `json:"reference" validate:"max=200"`
}

// RecordMovementRequest body para POST /api/stock-items/:id/movements (corrección administrativa).
type RecordMovementRequest struct {
	Type                     string           `json:"type" validate:"required,oneof=increment decrement adjustment initial"`
	QuantityInGrams          decimal.Decimal  `json:"quantity_in_grams" validate:"gt=0"`
	ResultingQuantityInGrams decimal.Decimal  `json:"resulting_quantity_in_grams" validate:"gte=0"`
	UnitCost                 *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost                *decimal.Decimal `json:"total_cost,omitempty"`
	Reference                string           `json:"reference" validate:"max=200"`
}

// CreateStockItemRequest body para POST /api/stock-items.
type CreateStockItemRequest struct {
	ProductID              string          `json:"product_id" validate:"required"`
	MinimumQuantityInGrams decimal.Decimal `json:"minimum_quantity_in_grams" validate:"gte=0"`
}

// StockItemResponse salida de un ítem de stock.
type StockItemResponse struct {
	ID                     string          `json:"id"`
	ProductID              string          `json:"product_id"`
	CurrentQuantityInGrams decimal.Decimal `json:"current_quantity_in_grams"`
	MinimumQuantityInGrams decimal.Decimal `json:"minimum_quantity_in_grams" validate:"gte=0"`
	AverageUnitCost        decimal.Decimal `json:"average_unit_cost"` // moneda/kg
	HighestUnitCost        decimal.Decimal `json:"highest_unit_cost"` // moneda/kg
	LastMovementID         string          `json:"last_movement_id,omitempty"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// StockMovementResponse salida de un movimiento del ledger.
type StockMovementResponse struct {
	ID                       string           `json:"id"`
	StockItemID              string           `json:"stock_item_id"`
	Type                     string           `json:"type"`
	QuantityInGrams          decimal.Decimal  `json:"quantity_in_grams" validate:"gt=0"`
	PreviousQuantityInGrams  decimal.Decimal  `json:"previous_quantity_in_grams"`
	ResultingQuantityInGrams decimal.Decimal  `json:"resulting_quantity_in_grams" validate:"gte=0"`
	UnitCost                 *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost                *decimal.Decimal `json:"total_cost,omitempty"`
	Reference                string           `json:"reference,omitempty"`
	PerformedBy              string           `json:"performed_by"`
	PerformedAt              time.Time        `json:"performed_at"`
}

// StockAlertResponse salida de una alerta de stock.
type StockAlertResponse struct {
	ID              string          `json:"id"`
	StockItemID     string          `json:"stock_item_id"`
	Severity        string          `json:"severity"`
	Status          string          `json:"status"`
	QuantityInGrams decimal.Decimal `json:"quantity_in_grams"`
	MinimumInGrams  decimal.Decimal `json:"minimum_in_grams"`
	AcknowledgedBy  string          `json:"acknowledged_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AdjustStockResponse resultado de un ajuste.
type AdjustStockResponse struct {
	Item            StockItemResponse     `json:"item"`
	Movement        StockMovementResponse `json:"movement"`
	Alert           *StockAlertResponse   `json:"alert,omitempty"`
	AlertTransition string                `json:"alert_transition,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	StockItemID        string          `json:"stock_item_id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Severity           string          `json:"severity"`
	CurrentInGrams     decimal.Decimal `json:"current_in_grams"`
	MinimumInGrams     decimal.Decimal `json:"minimum_in_grams"`
	IdealInGrams       decimal.Decimal `json:"ideal_in_grams"`       // MinimumInGrams * 1.5
	SuggestedInGrams   decimal.Decimal `json:"suggested_in_grams"`   // IdealInGrams - CurrentInGrams
	UnitCost           decimal.Decimal `json:"unit_cost"`            // moneda/kg (promedio o más alto)
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedInGrams a UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
