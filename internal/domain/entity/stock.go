package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem es el saldo materializado de un producto con inventario.
// Solo se modifica a través del ledger (AdjustStockLevel / RecordStockMovement).
// Los costos van en moneda por kilogramo aunque las cantidades estén en gramos.
type StockItem struct {
	ID                     string
	ProductID              string
	CurrentQuantityInGrams decimal.Decimal
	MinimumQuantityInGrams decimal.Decimal
	AverageUnitCost        decimal.Decimal // moneda/kg, promedio ponderado
	HighestUnitCost        decimal.Decimal // moneda/kg
	LastMovementID         string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ReferenceUnitCost devuelve el costo promedio o, si aún es cero, el costo más alto registrado.
func (s *StockItem) ReferenceUnitCost() decimal.Decimal {
	if s.AverageUnitCost.GreaterThan(decimal.Zero) {
		return s.AverageUnitCost
	}
	return s.HighestUnitCost
}
