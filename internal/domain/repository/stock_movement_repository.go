package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// StockMovementRepository puerto del ledger append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	ListByStockItem(ctx context.Context, stockItemID string, limit, offset int) ([]*entity.StockMovement, error)
}
