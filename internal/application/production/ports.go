package production

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios de producción atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		planRepo repository.ProductionPlanRepository,
		recordRepo repository.AvailabilityRecordRepository,
		divergenceRepo repository.DivergenceRepository,
	) error) error
}

// StockAdjuster puerto hacia el ledger; lo implementa inventory.AdjustStockUseCase.
type StockAdjuster interface {
	AdjustStockLevel(ctx context.Context, input inventory.AdjustStockInput) (*inventory.AdjustStockResult, error)
}

// StockReader lectura de saldos por producto.
type StockReader interface {
	GetByProductID(ctx context.Context, productID string) (*entity.StockItem, error)
}
