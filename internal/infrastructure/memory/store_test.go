package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryTxRunner_DescartaCambiosSiFalla(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	stock := memory.NewStockItemRepository(s)
	require.NoError(t, stock.Create(ctx, &entity.StockItem{ID: "x", ProductID: "p", CurrentQuantityInGrams: decimal.NewFromInt(10)}))

	boom := errors.New("boom")
	err := memory.NewInventoryTxRunner(s).Run(ctx, func(
		stockRepo repository.StockItemRepository,
		movRepo repository.StockMovementRepository,
		_ repository.StockAlertRepository,
	) error {
		item, err := stockRepo.GetForUpdate(ctx, "x")
		require.NoError(t, err)
		item.CurrentQuantityInGrams = decimal.NewFromInt(99)
		require.NoError(t, stockRepo.Update(ctx, item))
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{ID: "m1", StockItemID: "x"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	item, err := stock.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.True(t, item.CurrentQuantityInGrams.Equal(decimal.NewFromInt(10)))
	m, err := memory.NewStockMovementRepository(s).GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRepositorios_TimestampsYFaltantes(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.SetClock(func() time.Time { return at })

	plans := memory.NewProductionPlanRepository(s)
	p := &entity.ProductionPlan{ID: "plan", Status: entity.PlanStatusDraft}
	require.NoError(t, plans.Create(ctx, p))
	assert.Equal(t, at, p.CreatedAt)
	assert.ErrorIs(t, plans.Create(ctx, p), domain.ErrDuplicate)

	got, err := plans.GetByID(ctx, "otro")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, plans.Update(ctx, &entity.ProductionPlan{ID: "otro"}), domain.ErrNotFound)

	records := memory.NewAvailabilityRecordRepository(s)
	rec := &entity.ProductionPlanAvailabilityRecord{ID: "r1", PlanID: "plan",
		Shortages: []entity.IngredientShortage{{ProductID: "milk"}}}
	require.NoError(t, records.Create(ctx, rec))
	assert.ErrorIs(t, records.Create(ctx, &entity.ProductionPlanAvailabilityRecord{ID: "r2", PlanID: "plan"}), domain.ErrDuplicate)

	// lo persistido no comparte el slice del llamador
	rec.Shortages[0].ProductID = "mutado"
	stored, err := records.GetByPlanID(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, "milk", stored.Shortages[0].ProductID)

	stock := memory.NewStockItemRepository(s)
	require.NoError(t, stock.Create(ctx, &entity.StockItem{ID: "a", ProductID: "p"}))
	assert.ErrorIs(t, stock.Create(ctx, &entity.StockItem{ID: "b", ProductID: "p"}), domain.ErrDuplicate)
	byProduct, err := stock.GetByProductID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "a", byProduct.ID)
}

func TestStockMovementRepo_Paginacion(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	movs := memory.NewStockMovementRepository(s)
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, movs.Create(ctx, &entity.StockMovement{ID: id, StockItemID: "x"}))
	}
	require.NoError(t, movs.Create(ctx, &entity.StockMovement{ID: "otro", StockItemID: "y"}))

	page, err := movs.ListByStockItem(ctx, "x", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "m3", page[0].ID)
	assert.Equal(t, "m2", page[1].ID)

	page, err = movs.ListByStockItem(ctx, "x", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "m1", page[0].ID)

	page, err = movs.ListByStockItem(ctx, "x", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
