package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severidad y estado de las alertas de stock.
const (
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"

	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// StockAlert se abre cuando el saldo cae bajo el mínimo y se resuelve cuando lo recupera.
// Hay a lo sumo una alerta viva (open o acknowledged) por StockItem.
type StockAlert struct {
	ID              string
	StockItemID     string
	Severity        string
	Status          string
	QuantityInGrams decimal.Decimal // saldo al momento de la última evaluación
	MinimumInGrams  decimal.Decimal
	AcknowledgedBy  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// IsLive indica si la alerta sigue abierta o reconocida.
func (a *StockAlert) IsLive() bool {
	return a.Status == AlertStatusOpen || a.Status == AlertStatusAcknowledged
}
