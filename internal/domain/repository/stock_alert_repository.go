package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// StockAlertRepository puerto de alertas de stock.
// GetLiveByStockItem devuelve la alerta open/acknowledged del ítem o (nil, nil).
type StockAlertRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	GetLiveByStockItem(ctx context.Context, stockItemID string) (*entity.StockAlert, error)
	ListLive(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error)
	Create(ctx context.Context, alert *entity.StockAlert) error
	Update(ctx context.Context, alert *entity.StockAlert) error
}
