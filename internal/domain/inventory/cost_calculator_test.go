package inventory_test

import (
	"testing"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeightedAverageCost_EntradaSobreStockExistente(t *testing.T) {
	got := inventory.WeightedAverageCost(
		decimal.NewFromInt(100), decimal.NewFromInt(2000),
		decimal.NewFromInt(10), decimal.NewFromInt(2500),
	)
	assert.InDelta(t, 2045.4545454545455, got.InexactFloat64(), 1e-9)
}

func TestWeightedAverageCost_SinStockPrevioTomaCostoEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, decimal.NewFromInt(500), decimal.NewFromInt(1800))
	assert.True(t, got.Equal(decimal.NewFromInt(1800)), "got %s", got)
}

func TestWeightedAverageCost_SumaNoPositivaDevuelveCero(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(10))
	assert.True(t, got.IsZero())
}

func TestUnitCostPerKilogram(t *testing.T) {
	// 10 g que costaron 25 => 2500 por kg
	got := inventory.UnitCostPerKilogram(decimal.NewFromInt(25), decimal.NewFromInt(10))
	assert.True(t, got.Equal(decimal.NewFromInt(2500)), "got %s", got)
	assert.True(t, inventory.UnitCostPerKilogram(decimal.NewFromInt(25), decimal.Zero).IsZero())
}

func TestCostForGrams(t *testing.T) {
	got := inventory.CostForGrams(decimal.NewFromInt(350), decimal.NewFromInt(2000))
	assert.True(t, got.Equal(decimal.NewFromInt(700)), "got %s", got)
}

func TestAlertSeverityFor(t *testing.T) {
	min := decimal.NewFromInt(100)
	cases := []struct {
		name      string
		resulting int64
		want      string
	}{
		{"sobre el mínimo", 150, ""},
		{"igual al mínimo", 100, ""},
		{"bajo el mínimo", 60, entity.AlertSeverityWarning},
		{"justo en la mitad", 50, entity.AlertSeverityWarning},
		{"bajo la mitad", 49, entity.AlertSeverityCritical},
		{"agotado", 0, entity.AlertSeverityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.AlertSeverityFor(decimal.NewFromInt(tc.resulting), min))
		})
	}
}
