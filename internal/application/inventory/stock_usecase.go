package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockUseCase alta de ítems de stock y consultas del ledger.
// Los saldos nunca se modifican aquí: solo a través de AdjustStockUseCase.
type StockUseCase struct {
	stockRepo   repository.StockItemRepository
	movRepo     repository.StockMovementRepository
	alertRepo   repository.StockAlertRepository
	productRepo repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	stockRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	alertRepo repository.StockAlertRepository,
	productRepo repository.ProductRepository,
) *StockUseCase {
	return &StockUseCase{
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		alertRepo:   alertRepo,
		productRepo: productRepo,
	}
}

// RegisterStockItem crea el StockItem (saldo cero) de un producto con inventario.
// La carga inicial se hace luego con un movimiento initial.
func (uc *StockUseCase) RegisterStockItem(ctx context.Context, productID string, minimumInGrams decimal.Decimal) (*entity.StockItem, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if minimumInGrams.IsNegative() {
		return nil, domain.NewValidationError("minimum_quantity_in_grams", "no puede ser negativo")
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("producto", productID)
	}
	if !product.TrackInventory {
		return nil, domain.NewValidationError("product_id", "el producto no lleva inventario")
	}
	existing, err := uc.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	item := &entity.StockItem{
		ID:                     uuid.New().String(),
		ProductID:              productID,
		CurrentQuantityInGrams: decimal.Zero,
		MinimumQuantityInGrams: minimumInGrams,
		AverageUnitCost:        decimal.Zero,
		HighestUnitCost:        decimal.Zero,
	}
	if err := uc.stockRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetStockItem obtiene un ítem por id.
func (uc *StockUseCase) GetStockItem(ctx context.Context, id string) (*entity.StockItem, error) {
	item, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("stock item", id)
	}
	return item, nil
}

// ListMovements movimientos del ítem, más recientes primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, stockItemID string, limit, offset int) ([]*entity.StockMovement, error) {
	if _, err := uc.GetStockItem(ctx, stockItemID); err != nil {
		return nil, err
	}
	return uc.movRepo.ListByStockItem(ctx, stockItemID, limit, offset)
}

// ListLiveAlerts alertas abiertas o reconocidas.
func (uc *StockUseCase) ListLiveAlerts(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	return uc.alertRepo.ListLive(ctx, limit, offset)
}

// AcknowledgeAlert marca una alerta abierta como reconocida. La alerta sigue viva hasta
// que un ajuste devuelva el saldo al mínimo.
func (uc *StockUseCase) AcknowledgeAlert(ctx context.Context, alertID, userID string) (*entity.StockAlert, error) {
	alert, err := uc.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.NotFoundf("alerta", alertID)
	}
	if alert.Status != entity.AlertStatusOpen {
		return nil, domain.ErrInvalidTransition
	}
	alert.Status = entity.AlertStatusAcknowledged
	alert.AcknowledgedBy = userID
	if err := uc.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}
