package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const stockAlertColumns = `id, stock_item_id, severity, status, quantity_in_grams, minimum_in_grams,
	acknowledged_by, created_at, updated_at, resolved_at`

// StockAlertRepo alertas de stock. Un índice único parcial garantiza una sola alerta viva por ítem.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(
		&a.ID, &a.StockItemID, &a.Severity, &a.Status, &a.QuantityInGrams, &a.MinimumInGrams,
		&a.AcknowledgedBy, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *StockAlertRepo) getOne(ctx context.Context, op, query, arg string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetByID obtiene una alerta; (nil, nil) si no existe.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	return r.getOne(ctx, "get stock alert", `SELECT `+stockAlertColumns+` FROM stock_alerts WHERE id = $1`, id)
}

// GetLiveByStockItem alerta open/acknowledged del ítem.
func (r *StockAlertRepo) GetLiveByStockItem(ctx context.Context, stockItemID string) (*entity.StockAlert, error) {
	return r.getOne(ctx, "get live stock alert", `SELECT `+stockAlertColumns+` FROM stock_alerts
		WHERE stock_item_id = $1 AND status IN ('open', 'acknowledged')`, stockItemID)
}

// ListLive alertas vivas, las actualizadas más recientemente primero.
func (r *StockAlertRepo) ListLive(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, `SELECT `+stockAlertColumns+` FROM stock_alerts
		WHERE status IN ('open', 'acknowledged')
		ORDER BY updated_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list live stock alerts: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create abre una alerta; ErrDuplicate si el ítem ya tiene una viva.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (id, stock_item_id, severity, status, quantity_in_grams, minimum_in_grams,
			acknowledged_by, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.StockItemID, a.Severity, a.Status, a.QuantityInGrams, a.MinimumInGrams, a.AcknowledgedBy, a.ResolvedAt,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock alert: %w", err)
	}
	return nil
}

// Update persiste severidad, estado y cantidades de la alerta.
func (r *StockAlertRepo) Update(ctx context.Context, a *entity.StockAlert) error {
	query := `
		UPDATE stock_alerts SET severity = $2, status = $3, quantity_in_grams = $4, minimum_in_grams = $5,
			acknowledged_by = $6, resolved_at = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.Severity, a.Status, a.QuantityInGrams, a.MinimumInGrams, a.AcknowledgedBy, a.ResolvedAt,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("alerta", a.ID)
		}
		return fmt.Errorf("update stock alert: %w", err)
	}
	return nil
}
