package production

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	lowThreshold    = decimal.NewFromFloat(0.10)
	mediumThreshold = decimal.NewFromFloat(0.25)
	highThreshold   = decimal.NewFromFloat(0.50)
)

// ShortfallFraction fracción faltante (required - consumed) / required, acotada a [0, 1].
func ShortfallFraction(required, consumed decimal.Decimal) decimal.Decimal {
	if !required.IsPositive() {
		return decimal.Zero
	}
	missing := required.Sub(consumed)
	if !missing.IsPositive() {
		return decimal.Zero
	}
	f := missing.Div(required)
	if f.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return f
}

// DivergenceSeverity severidad según la fracción faltante:
// <10% low, <25% medium, <50% high, desde 50% critical.
func DivergenceSeverity(fraction decimal.Decimal) string {
	switch {
	case fraction.LessThan(lowThreshold):
		return entity.DivergenceSeverityLow
	case fraction.LessThan(mediumThreshold):
		return entity.DivergenceSeverityMedium
	case fraction.LessThan(highThreshold):
		return entity.DivergenceSeverityHigh
	default:
		return entity.DivergenceSeverityCritical
	}
}

// FulfillmentRatio razón consumido/requerido de un producto, acotada a [0, 1].
func FulfillmentRatio(required, consumed decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if !required.IsPositive() {
		return one
	}
	r := consumed.Div(required)
	if r.GreaterThan(one) {
		return one
	}
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
