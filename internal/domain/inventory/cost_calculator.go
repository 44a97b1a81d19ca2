package inventory

import "github.com/shopspring/decimal"

var gramsPerKilogram = decimal.NewFromInt(1000)

// WeightedAverageCost recalcula el costo promedio ponderado (moneda/kg) tras una entrada.
// NuevoCosto = ((CantidadPrevia * CostoPromedio) + (CantEntrada * CostoEntrada)) / (CantidadPrevia + CantEntrada)
// Las cantidades pueden ir en gramos: el factor se cancela en el cociente.
func WeightedAverageCost(previousQty, averageCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	sum := previousQty.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := previousQty.Mul(averageCost).Add(incomingQty.Mul(incomingCost))
	return num.Div(sum)
}

// UnitCostPerKilogram normaliza el costo total de una entrada en gramos a moneda/kg.
func UnitCostPerKilogram(totalCost, quantityInGrams decimal.Decimal) decimal.Decimal {
	if !quantityInGrams.IsPositive() {
		return decimal.Zero
	}
	return totalCost.Div(quantityInGrams).Mul(gramsPerKilogram)
}

// CostForGrams estima el costo de una cantidad en gramos a un costo unitario en moneda/kg.
func CostForGrams(quantityInGrams, unitCostPerKg decimal.Decimal) decimal.Decimal {
	return quantityInGrams.Mul(unitCostPerKg).Div(gramsPerKilogram)
}
