package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// StockItemRepository puerto para consultar/actualizar saldos de stock.
// Dentro de una transacción, GetForUpdate bloquea el registro hasta el Commit.
type StockItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	GetByProductID(ctx context.Context, productID string) (*entity.StockItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	Create(ctx context.Context, item *entity.StockItem) error
	Update(ctx context.Context, item *entity.StockItem) error
}
