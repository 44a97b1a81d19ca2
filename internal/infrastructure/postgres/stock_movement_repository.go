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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const stockMovementColumns = `id, stock_item_id, type, quantity_in_grams, previous_quantity_in_grams,
	resulting_quantity_in_grams, unit_cost, total_cost, reference, performed_by, performed_at`

// StockMovementRepo ledger append-only sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega un movimiento; performed_at lo asigna el servidor.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, stock_item_id, type, quantity_in_grams, previous_quantity_in_grams,
			resulting_quantity_in_grams, unit_cost, total_cost, reference, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		RETURNING performed_at`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.StockItemID, m.Type, m.QuantityInGrams, m.PreviousQuantityInGrams,
		m.ResultingQuantityInGrams, m.UnitCost, m.TotalCost, m.Reference, m.PerformedBy,
	).Scan(&m.PerformedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.StockItemID, &m.Type, &m.QuantityInGrams, &m.PreviousQuantityInGrams,
		&m.ResultingQuantityInGrams, &m.UnitCost, &m.TotalCost, &m.Reference, &m.PerformedBy, &m.PerformedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene un movimiento; (nil, nil) si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+stockMovementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByStockItem movimientos del ítem, más recientes primero. limit <= 0 = sin límite.
func (r *StockMovementRepo) ListByStockItem(ctx context.Context, stockItemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements
		WHERE stock_item_id = $1 ORDER BY performed_at DESC, seq DESC`
	args := []any{stockItemID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $2`
		args = append(args, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
