package entity

import "time"

// Product es el dato maestro de un insumo. TrackInventory=false significa que no tiene StockItem
// y se ignora al verificar disponibilidad y al consumir.
type Product struct {
	ID             string
	Name           string
	SKU            string
	UnitMeasure    string
	TrackInventory bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
