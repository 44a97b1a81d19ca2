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

var _ repository.ProductionPlanRepository = (*ProductionPlanRepo)(nil)

const planColumns = `id, recipe_id, quantity_in_units, unit_of_measure, status, actual_quantity_in_units,
	scheduled_for, notes, archived, created_by, started_at, completed_at, completion_claim, created_at, updated_at`

// ProductionPlanRepo planes de producción sobre PostgreSQL.
type ProductionPlanRepo struct {
	q Querier
}

// NewProductionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionPlanRepository(q Querier) *ProductionPlanRepo {
	return &ProductionPlanRepo{q: q}
}

func scanPlan(row pgx.Row) (*entity.ProductionPlan, error) {
	var p entity.ProductionPlan
	err := row.Scan(
		&p.ID, &p.RecipeID, &p.QuantityInUnits, &p.UnitOfMeasure, &p.Status, &p.ActualQuantityInUnits,
		&p.ScheduledFor, &p.Notes, &p.Archived, &p.CreatedBy, &p.StartedAt, &p.CompletedAt, &p.CompletionClaim,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta el plan.
func (r *ProductionPlanRepo) Create(ctx context.Context, p *entity.ProductionPlan) error {
	query := `
		INSERT INTO production_plans (id, recipe_id, quantity_in_units, unit_of_measure, status, actual_quantity_in_units,
			scheduled_for, notes, archived, created_by, started_at, completed_at, completion_claim, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.RecipeID, p.QuantityInUnits, p.UnitOfMeasure, p.Status, p.ActualQuantityInUnits,
		p.ScheduledFor, p.Notes, p.Archived, p.CreatedBy, p.StartedAt, p.CompletedAt, p.CompletionClaim,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production plan: %w", err)
	}
	return nil
}

// GetByID obtiene un plan; (nil, nil) si no existe.
func (r *ProductionPlanRepo) GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.getOne(ctx, "get production plan", `SELECT `+planColumns+` FROM production_plans WHERE id = $1`, id)
}

// GetForUpdate obtiene el plan y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *ProductionPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.getOne(ctx, "get production plan for update", `SELECT `+planColumns+` FROM production_plans WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionPlanRepo) getOne(ctx context.Context, op, query, id string) (*entity.ProductionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update persiste estado, cantidades y sellos de tiempo del plan.
func (r *ProductionPlanRepo) Update(ctx context.Context, p *entity.ProductionPlan) error {
	query := `
		UPDATE production_plans SET status = $2, actual_quantity_in_units = $3, scheduled_for = $4, notes = $5,
			archived = $6, started_at = $7, completed_at = $8, completion_claim = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.Status, p.ActualQuantityInUnits, p.ScheduledFor, p.Notes, p.Archived, p.StartedAt, p.CompletedAt,
		p.CompletionClaim,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("plan", p.ID)
		}
		return fmt.Errorf("update production plan: %w", err)
	}
	return nil
}

// List planes más recientes primero, filtrados por estado si status no es vacío.
func (r *ProductionPlanRepo) List(ctx context.Context, status string, includeArchived bool, limit, offset int) ([]*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans
		WHERE ($1 = '' OR status = $1) AND ($2 OR NOT archived)
		ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, status, includeArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production plans: %w", err)
	}
	defer rows.Close()
	list := []*entity.ProductionPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
