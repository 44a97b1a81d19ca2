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

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, product_id, current_quantity_in_grams, minimum_quantity_in_grams,
	average_unit_cost, highest_unit_cost, last_movement_id, created_at, updated_at`

// StockItemRepo saldos de stock sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	var lastMovementID *string
	err := row.Scan(
		&s.ID, &s.ProductID, &s.CurrentQuantityInGrams, &s.MinimumQuantityInGrams,
		&s.AverageUnitCost, &s.HighestUnitCost, &lastMovementID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.LastMovementID = derefString(lastMovementID)
	return &s, nil
}

func (r *StockItemRepo) getOne(ctx context.Context, op, query string, arg string) (*entity.StockItem, error) {
	s, err := scanStockItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// GetByID obtiene un ítem; (nil, nil) si no existe.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item", `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
}

// GetByProductID obtiene el ítem de un producto; (nil, nil) si no tiene.
func (r *StockItemRepo) GetByProductID(ctx context.Context, productID string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item by product", `SELECT `+stockItemColumns+` FROM stock_items WHERE product_id = $1`, productID)
}

// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item for update", `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id)
}

// Create inserta el ítem; ErrDuplicate si el producto ya tiene uno.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, product_id, current_quantity_in_grams, minimum_quantity_in_grams,
			average_unit_cost, highest_unit_cost, last_movement_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		item.ID, item.ProductID, item.CurrentQuantityInGrams, item.MinimumQuantityInGrams,
		item.AverageUnitCost, item.HighestUnitCost, nullIfEmpty(item.LastMovementID),
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// Update persiste saldo, mínimo, costos y último movimiento.
func (r *StockItemRepo) Update(ctx context.Context, item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET current_quantity_in_grams = $2, minimum_quantity_in_grams = $3,
			average_unit_cost = $4, highest_unit_cost = $5, last_movement_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		item.ID, item.CurrentQuantityInGrams, item.MinimumQuantityInGrams,
		item.AverageUnitCost, item.HighestUnitCost, nullIfEmpty(item.LastMovementID),
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("stock item", item.ID)
		}
		return fmt.Errorf("update stock item: %w", err)
	}
	return nil
}
