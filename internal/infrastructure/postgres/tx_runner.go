package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

var (
	_ inventory.TxRunner  = (*InventoryTxRunner)(nil)
	_ production.TxRunner = (*ProductionTxRunner)(nil)
)

// txExecutor abre la tx, ejecuta fn y hace Commit o Rollback. Reintenta ante fallos de
// serialización o deadlock; agotados los intentos devuelve domain.ErrConsistency.
type txExecutor struct {
	pool        *pgxpool.Pool
	maxAttempts int
	log         *logger.Logger
}

func newTxExecutor(pool *pgxpool.Pool, maxAttempts int, log *logger.Logger) txExecutor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return txExecutor{pool: pool, maxAttempts: maxAttempts, log: log.Component("postgres_tx")}
}

func (e txExecutor) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		lastErr = e.runOnce(ctx, fn)
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
		e.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("transacción abortada por conflicto, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w tras %d intentos: %w", domain.ErrConsistency, e.maxAttempts, lastErr)
}

func (e txExecutor) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InventoryTxRunner ejecuta el read-modify-write del ledger en una tx; el bloqueo del ítem
// lo toma StockItemRepo.GetForUpdate (SELECT ... FOR UPDATE).
type InventoryTxRunner struct {
	exec txExecutor
}

// NewInventoryTxRunner construye el runner con el pool.
func NewInventoryTxRunner(pool *pgxpool.Pool, maxAttempts int, log *logger.Logger) *InventoryTxRunner {
	return &InventoryTxRunner{exec: newTxExecutor(pool, maxAttempts, log)}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *InventoryTxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.exec.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockItemRepository(tx), NewStockMovementRepository(tx), NewStockAlertRepository(tx))
	})
}

// ProductionTxRunner igual que InventoryTxRunner para planes, registros y divergencias.
type ProductionTxRunner struct {
	exec txExecutor
}

// NewProductionTxRunner construye el runner con el pool.
func NewProductionTxRunner(pool *pgxpool.Pool, maxAttempts int, log *logger.Logger) *ProductionTxRunner {
	return &ProductionTxRunner{exec: newTxExecutor(pool, maxAttempts, log)}
}

// Run inicia una transacción con los repositorios de producción.
func (r *ProductionTxRunner) Run(ctx context.Context, fn func(
	planRepo repository.ProductionPlanRepository,
	recordRepo repository.AvailabilityRecordRepository,
	divergenceRepo repository.DivergenceRepository,
) error) error {
	return r.exec.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductionPlanRepository(tx), NewAvailabilityRecordRepository(tx), NewDivergenceRepository(tx))
	})
}
