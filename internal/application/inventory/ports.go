package inventory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad del read-modify-write por StockItem: dos ajustes concurrentes sobre el mismo
// ítem se serializan. Si la tx no logra confirmarse tras los reintentos devuelve domain.ErrConsistency.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockItemRepository,
		movRepo repository.StockMovementRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}

// Notifier sink opcional de notificaciones. Sus errores se registran y nunca se propagan.
type Notifier interface {
	Notify(ctx context.Context, category, referenceID, message string) error
}

// Categoría usada al notificar alertas de stock.
const NotificationCategoryStockAlert = "stock_alert"
