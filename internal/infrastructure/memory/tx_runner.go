package memory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// InventoryTxRunner ejecuta la función del ledger con repositorios atados a una copia del estado.
// Implementa inventory.TxRunner.
type InventoryTxRunner struct{ s *Store }

// NewInventoryTxRunner construye el runner del ledger.
func NewInventoryTxRunner(s *Store) *InventoryTxRunner { return &InventoryTxRunner{s: s} }

// Run ejecuta fn sobre un clon del estado y lo publica solo si fn no falla.
func (r *InventoryTxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.runTx(func(tx *state) error {
		v := view{s: r.s, tx: tx}
		return fn(&StockItemRepo{v: v}, &StockMovementRepo{v: v}, &StockAlertRepo{v: v})
	})
}

// ProductionTxRunner igual que InventoryTxRunner para planes, registros y divergencias.
// Implementa production.TxRunner.
type ProductionTxRunner struct{ s *Store }

// NewProductionTxRunner construye el runner de producción.
func NewProductionTxRunner(s *Store) *ProductionTxRunner { return &ProductionTxRunner{s: s} }

// Run ejecuta fn sobre un clon del estado y lo publica solo si fn no falla.
func (r *ProductionTxRunner) Run(ctx context.Context, fn func(
	planRepo repository.ProductionPlanRepository,
	recordRepo repository.AvailabilityRecordRepository,
	divergenceRepo repository.DivergenceRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.runTx(func(tx *state) error {
		v := view{s: r.s, tx: tx}
		return fn(&ProductionPlanRepo{v: v}, &AvailabilityRecordRepo{v: v}, &DivergenceRepo{v: v})
	})
}
