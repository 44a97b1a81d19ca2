package inventory

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var criticalRatio = decimal.NewFromFloat(0.5)

// AlertSeverityFor devuelve la severidad que corresponde al saldo resultante, o "" si el
// saldo alcanza el mínimo. Bajo el 50% del mínimo la alerta es crítica.
func AlertSeverityFor(resulting, minimum decimal.Decimal) string {
	if !resulting.LessThan(minimum) {
		return ""
	}
	if resulting.LessThan(minimum.Mul(criticalRatio)) {
		return entity.AlertSeverityCritical
	}
	return entity.AlertSeverityWarning
}
