package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockUseCase_RegistroConsultasYReconocimiento(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	stock := memory.NewStockItemRepository(s)
	alerts := memory.NewStockAlertRepository(s)
	uc := inventory.NewStockUseCase(stock, memory.NewStockMovementRepository(s), alerts, products)
	ledger := inventory.NewAdjustStockUseCase(memory.NewInventoryTxRunner(s), nil, nil)

	require.NoError(t, products.Create(ctx, &entity.Product{ID: "harina", Name: "Harina", TrackInventory: true}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "agua", Name: "Agua"}))

	_, err := uc.RegisterStockItem(ctx, "agua", d(10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.RegisterStockItem(ctx, "nada", d(10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.RegisterStockItem(ctx, "harina", d(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	item, err := uc.RegisterStockItem(ctx, "harina", d(1000))
	require.NoError(t, err)
	assert.True(t, item.CurrentQuantityInGrams.IsZero())
	_, err = uc.RegisterStockItem(ctx, "harina", d(1000))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = ledger.AdjustStockLevel(ctx, inventory.AdjustStockInput{
		StockItemID: item.ID, QuantityInGrams: d(600), Type: entity.MovementTypeInitial, TotalCost: dp(1200),
	})
	require.NoError(t, err)
	_, err = ledger.AdjustStockLevel(ctx, inventory.AdjustStockInput{
		StockItemID: item.ID, QuantityInGrams: d(200), Type: entity.MovementTypeDecrement,
	})
	require.NoError(t, err)

	movs, err := uc.ListMovements(ctx, item.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeDecrement, movs[0].Type)
	_, err = uc.ListMovements(ctx, "nada", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	live, err := uc.ListLiveAlerts(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, entity.AlertSeverityCritical, live[0].Severity)

	acked, err := uc.AcknowledgeAlert(ctx, live[0].ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusAcknowledged, acked.Status)
	assert.Equal(t, "jefe", acked.AcknowledgedBy)
	_, err = uc.AcknowledgeAlert(ctx, live[0].ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = uc.AcknowledgeAlert(ctx, "nada", "jefe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// reconocida sigue viva: el siguiente ajuste la actualiza en vez de abrir otra
	res, err := ledger.AdjustStockLevel(ctx, inventory.AdjustStockInput{
		StockItemID: item.ID, QuantityInGrams: d(100), Type: entity.MovementTypeIncrement, TotalCost: dp(200),
	})
	require.NoError(t, err)
	assert.Equal(t, acked.ID, res.Alert.ID)
	assert.Equal(t, inventory.AlertSeverityChanged, res.AlertTransition)
	assert.Equal(t, entity.AlertStatusAcknowledged, res.Alert.Status)
}

func TestGenerateReplenishmentList_PriorizaCriticasYDeficit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	stock := memory.NewStockItemRepository(s)
	ledger := inventory.NewAdjustStockUseCase(memory.NewInventoryTxRunner(s), nil, nil)
	uc := inventory.NewReplenishmentUseCase(memory.NewStockAlertRepository(s), stock, products)

	seed := func(id string, minimum, grams float64) {
		require.NoError(t, products.Create(ctx, &entity.Product{ID: id, Name: "P " + id, TrackInventory: true}))
		require.NoError(t, stock.Create(ctx, &entity.StockItem{ID: "si-" + id, ProductID: id, MinimumQuantityInGrams: d(minimum)}))
		_, err := ledger.AdjustStockLevel(ctx, inventory.AdjustStockInput{
			StockItemID: "si-" + id, QuantityInGrams: d(grams), Type: entity.MovementTypeInitial, TotalCost: dp(grams * 3),
		})
		require.NoError(t, err)
	}
	seed("ok", 100, 500)
	seed("warn-leve", 1000, 900)
	seed("warn-fuerte", 1000, 600)
	seed("crit", 1000, 100)

	list, err := uc.GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "crit", list[0].ProductID)
	assert.Equal(t, "warn-fuerte", list[1].ProductID)
	assert.Equal(t, "warn-leve", list[2].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedInGrams.Equal(d(1400)))
	// 1400 g a 3000/kg
	assert.True(t, list[0].EstimatedOrderCost.Equal(d(4200)))
	assert.Equal(t, "P crit", list[0].ProductName)
}
