package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, category, referenceID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, category+"|"+referenceID+"|"+message)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type ledgerFixture struct {
	ctx       context.Context
	stock     *memory.StockItemRepo
	movements *memory.StockMovementRepo
	alerts    *memory.StockAlertRepo
	notifier  *recordingNotifier
	uc        *inventory.AdjustStockUseCase
}

func newLedger(t *testing.T) *ledgerFixture {
	t.Helper()
	s := memory.NewStore()
	n := &recordingNotifier{}
	return &ledgerFixture{
		ctx:       context.Background(),
		stock:     memory.NewStockItemRepository(s),
		movements: memory.NewStockMovementRepository(s),
		alerts:    memory.NewStockAlertRepository(s),
		notifier:  n,
		uc:        inventory.NewAdjustStockUseCase(memory.NewInventoryTxRunner(s), n, nil),
	}
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func dp(v float64) *decimal.Decimal {
	x := d(v)
	return &x
}

func (f *ledgerFixture) item(t *testing.T, id string, minimum float64) {
	t.Helper()
	require.NoError(t, f.stock.Create(f.ctx, &entity.StockItem{ID: id, ProductID: "p-" + id, MinimumQuantityInGrams: d(minimum)}))
}

func (f *ledgerFixture) adjust(t *testing.T, id, typ string, grams float64, cost *decimal.Decimal) *inventory.AdjustStockResult {
	t.Helper()
	res, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: id, QuantityInGrams: d(grams), Type: typ, PerformedBy: "tester", TotalCost: cost,
	})
	require.NoError(t, err)
	return res
}

func (f *ledgerFixture) get(t *testing.T, id string) *entity.StockItem {
	t.Helper()
	item, err := f.stock.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func TestAdjustStockLevel_PromedioPonderado(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	// 100 g a 2000/kg, luego 10 g a 2500/kg
	f.adjust(t, "x", entity.MovementTypeInitial, 100, dp(200))
	res := f.adjust(t, "x", entity.MovementTypeIncrement, 10, dp(25))

	assert.InDelta(t, 2045.4545454545455, res.Item.AverageUnitCost.InexactFloat64(), 1e-9)
	assert.True(t, res.Item.HighestUnitCost.Equal(d(2500)))
	require.NotNil(t, res.Movement.UnitCost)
	assert.True(t, res.Movement.UnitCost.Equal(d(2500)))
	assert.True(t, res.Movement.PreviousQuantityInGrams.Equal(d(100)))
	assert.True(t, res.Movement.ResultingQuantityInGrams.Equal(d(110)))
	assert.Equal(t, res.Movement.ID, f.get(t, "x").LastMovementID)
}

func TestAdjustStockLevel_DecrementoYAjusteAbsoluto(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	f.adjust(t, "x", entity.MovementTypeInitial, 1000, dp(2000))

	res := f.adjust(t, "x", entity.MovementTypeDecrement, 300, nil)
	assert.True(t, res.Item.CurrentQuantityInGrams.Equal(d(700)))
	assert.Nil(t, res.Movement.UnitCost)
	assert.True(t, res.Item.AverageUnitCost.Equal(d(2000)), "un egreso no cambia el promedio")

	res = f.adjust(t, "x", entity.MovementTypeAdjustment, 250, nil)
	assert.True(t, res.Movement.PreviousQuantityInGrams.Equal(d(700)))
	assert.True(t, f.get(t, "x").CurrentQuantityInGrams.Equal(d(250)))
}

func TestAdjustStockLevel_Validaciones(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	cases := []inventory.AdjustStockInput{
		{StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeIncrement},
		{StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeInitial},
		{StockItemID: "x", QuantityInGrams: decimal.Zero, Type: entity.MovementTypeDecrement},
		{StockItemID: "x", QuantityInGrams: d(-5), Type: entity.MovementTypeDecrement},
		{StockItemID: "x", QuantityInGrams: d(10), Type: "robo"},
		{StockItemID: "", QuantityInGrams: d(10), Type: entity.MovementTypeDecrement},
		{StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeIncrement, TotalCost: dp(-1)},
	}
	for _, in := range cases {
		_, err := f.uc.AdjustStockLevel(f.ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
	movs, err := f.movements.ListByStockItem(f.ctx, "x", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestAdjustStockLevel_ItemInexistente(t *testing.T) {
	f := newLedger(t)
	_, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "nada", QuantityInGrams: d(10), Type: entity.MovementTypeDecrement,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStockLevel_DecrementoInsuficienteNoDejaRastro(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	f.adjust(t, "x", entity.MovementTypeInitial, 100, dp(200))

	_, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "x", QuantityInGrams: d(101), Type: entity.MovementTypeDecrement,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.get(t, "x").CurrentQuantityInGrams.Equal(d(100)))
	movs, err := f.movements.ListByStockItem(f.ctx, "x", 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestAdjustStockLevel_CicloDeVidaDeLaAlerta(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 1000)

	res := f.adjust(t, "x", entity.MovementTypeInitial, 1200, dp(2400))
	assert.Nil(t, res.Alert)
	assert.Empty(t, res.AlertTransition)

	res = f.adjust(t, "x", entity.MovementTypeDecrement, 300, nil) // 900
	require.NotNil(t, res.Alert)
	assert.Equal(t, inventory.AlertOpened, res.AlertTransition)
	assert.Equal(t, entity.AlertSeverityWarning, res.Alert.Severity)
	assert.Equal(t, 1, f.notifier.count())

	res = f.adjust(t, "x", entity.MovementTypeDecrement, 100, nil) // 800
	assert.Equal(t, inventory.AlertRefreshed, res.AlertTransition)
	assert.Equal(t, 1, f.notifier.count(), "sin cambio de severidad no se notifica")

	res = f.adjust(t, "x", entity.MovementTypeDecrement, 500, nil) // 300
	assert.Equal(t, inventory.AlertSeverityChanged, res.AlertTransition)
	assert.Equal(t, entity.AlertSeverityCritical, res.Alert.Severity)
	assert.Equal(t, 2, f.notifier.count())

	alertID := res.Alert.ID
	res = f.adjust(t, "x", entity.MovementTypeIncrement, 1000, dp(2000)) // 1300
	assert.Equal(t, inventory.AlertResolved, res.AlertTransition)
	assert.Equal(t, alertID, res.Alert.ID)
	assert.Equal(t, entity.AlertStatusResolved, res.Alert.Status)
	assert.NotNil(t, res.Alert.ResolvedAt)
	assert.Equal(t, 2, f.notifier.count())

	live, err := f.alerts.ListLive(f.ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestAdjustStockLevel_FalloDelNotificadorNoSePropaga(t *testing.T) {
	f := newLedger(t)
	f.notifier.err = errors.New("broker caído")
	f.item(t, "x", 1000)

	res, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "x", QuantityInGrams: d(100), Type: entity.MovementTypeInitial, TotalCost: dp(100),
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.AlertOpened, res.AlertTransition)
	assert.Equal(t, entity.AlertSeverityCritical, res.Alert.Severity)
	assert.Equal(t, 1, f.notifier.count())
	assert.True(t, f.get(t, "x").CurrentQuantityInGrams.Equal(d(100)))
}

func TestAdjustStockLevel_ConcurrenciaSobreElMismoItemNoPierdeUpdates(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	f.adjust(t, "x", entity.MovementTypeInitial, 1000, dp(2000))

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
				StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeIncrement, TotalCost: dp(20),
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
				StockItemID: "x", QuantityInGrams: d(5), Type: entity.MovementTypeDecrement,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.get(t, "x").CurrentQuantityInGrams.Equal(d(1000+workers*5)))
	movs, err := f.movements.ListByStockItem(f.ctx, "x", 0, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1+workers*2)
}

func TestAdjustStockLevel_ItemsIndependientes(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	f.item(t, "y", 0)
	f.adjust(t, "y", entity.MovementTypeInitial, 500, dp(1000))

	f.adjust(t, "x", entity.MovementTypeInitial, 100, dp(200))
	f.adjust(t, "x", entity.MovementTypeDecrement, 50, nil)
	f.adjust(t, "x", entity.MovementTypeAdjustment, 7, nil)

	y := f.get(t, "y")
	assert.True(t, y.CurrentQuantityInGrams.Equal(d(500)))
	assert.True(t, y.AverageUnitCost.Equal(d(2000)))
}

func TestRecordStockMovement_FijaElSaldoSinRecalcularCostos(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 100)
	f.adjust(t, "x", entity.MovementTypeInitial, 500, dp(1000))

	res, err := f.uc.RecordStockMovement(f.ctx, inventory.RecordMovementInput{
		StockItemID:              "x",
		Type:                     entity.MovementTypeAdjustment,
		QuantityInGrams:          d(460),
		ResultingQuantityInGrams: d(40),
		UnitCost:                 dp(9999),
		PerformedBy:              "auditor",
		Reference:                "conteo físico",
	})
	require.NoError(t, err)
	assert.True(t, res.Movement.PreviousQuantityInGrams.Equal(d(500)))
	assert.Equal(t, inventory.AlertOpened, res.AlertTransition)

	item := f.get(t, "x")
	assert.True(t, item.CurrentQuantityInGrams.Equal(d(40)))
	assert.True(t, item.AverageUnitCost.Equal(d(2000)))

	_, err = f.uc.RecordStockMovement(f.ctx, inventory.RecordMovementInput{
		StockItemID: "x", Type: entity.MovementTypeAdjustment, QuantityInGrams: d(1), ResultingQuantityInGrams: d(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStockLevel_DecrementoAcotadoAlSaldoBloqueado(t *testing.T) {
	f := newLedger(t)
	f.item(t, "x", 0)
	f.adjust(t, "x", entity.MovementTypeInitial, 300, dp(600))

	res, err := f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "x", QuantityInGrams: d(500), Type: entity.MovementTypeDecrement, ClampToAvailable: true,
	})
	require.NoError(t, err)
	assert.True(t, res.AppliedInGrams.Equal(d(300)))
	require.NotNil(t, res.Movement)
	assert.True(t, res.Movement.QuantityInGrams.Equal(d(300)))
	assert.True(t, res.Movement.ResultingQuantityInGrams.IsZero())
	assert.True(t, f.get(t, "x").CurrentQuantityInGrams.IsZero())

	res, err = f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeDecrement, ClampToAvailable: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Movement, "sin saldo no hay movimiento")
	assert.True(t, res.AppliedInGrams.IsZero())
	movs, err := f.movements.ListByStockItem(f.ctx, "x", 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	_, err = f.uc.AdjustStockLevel(f.ctx, inventory.AdjustStockInput{
		StockItemID: "x", QuantityInGrams: d(10), Type: entity.MovementTypeIncrement, TotalCost: dp(10), ClampToAvailable: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
