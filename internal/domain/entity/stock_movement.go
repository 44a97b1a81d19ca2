package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger de stock.
const (
	MovementTypeIncrement  = "increment"  // entrada
	MovementTypeDecrement  = "decrement"  // salida
	MovementTypeAdjustment = "adjustment" // ajuste a un saldo absoluto
	MovementTypeInitial    = "initial"    // carga inicial
)

// IsValidMovementType indica si t es uno de los tipos de movimiento conocidos.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIncrement, MovementTypeDecrement, MovementTypeAdjustment, MovementTypeInitial:
		return true
	}
	return false
}

// StockMovement es un registro inmutable del ledger. Nunca se actualiza ni se borra.
type StockMovement struct {
	ID                       string
	StockItemID              string
	Type                     string
	QuantityInGrams          decimal.Decimal
	PreviousQuantityInGrams  decimal.Decimal
	ResultingQuantityInGrams decimal.Decimal
	UnitCost                 *decimal.Decimal // moneda/kg; nil si el movimiento no trae costo
	TotalCost                *decimal.Decimal
	Reference                string // plan de producción, nota de ajuste, etc.
	PerformedBy              string
	PerformedAt              time.Time
}
