package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.DivergenceRepository = (*DivergenceRepo)(nil)

// DivergenceRepo divergencias de producción.
type DivergenceRepo struct {
	q Querier
}

// NewDivergenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDivergenceRepository(q Querier) *DivergenceRepo {
	return &DivergenceRepo{q: q}
}

func (r *DivergenceRepo) Create(ctx context.Context, d *entity.ProductionDivergence) error {
	query := `
		INSERT INTO production_divergences (id, plan_id, product_id, severity, type, expected_quantity_in_units,
			actual_quantity_in_units, description, reported_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		d.ID, d.PlanID, d.ProductID, d.Severity, d.Type, d.ExpectedQuantityInUnits,
		d.ActualQuantityInUnits, d.Description, d.ReportedBy,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert production divergence: %w", err)
	}
	return nil
}

func (r *DivergenceRepo) ListByPlan(ctx context.Context, planID string) ([]*entity.ProductionDivergence, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, plan_id, product_id, severity, type, expected_quantity_in_units,
			actual_quantity_in_units, description, reported_by, created_at
		FROM production_divergences WHERE plan_id = $1 ORDER BY created_at, id`, planID)
	if err != nil {
		return nil, fmt.Errorf("list production divergences: %w", err)
	}
	defer rows.Close()
	list := []*entity.ProductionDivergence{}
	for rows.Next() {
		var d entity.ProductionDivergence
		if err := rows.Scan(
			&d.ID, &d.PlanID, &d.ProductID, &d.Severity, &d.Type, &d.ExpectedQuantityInUnits,
			&d.ActualQuantityInUnits, &d.Description, &d.ReportedBy, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan production divergence: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
