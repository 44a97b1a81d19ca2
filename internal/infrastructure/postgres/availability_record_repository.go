package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AvailabilityRecordRepository = (*AvailabilityRecordRepo)(nil)

const recordColumns = `id, plan_id, status, shortages, total_required_in_grams, total_shortage_in_grams,
	estimated_cost, confirmed_by, actual_consumed_in_grams, actual_shortage_in_grams,
	execution_started_at, execution_completed_at, created_at, updated_at`

// shortageRow forma JSONB de un faltante.
type shortageRow struct {
	ProductID        string          `json:"product_id"`
	RequiredInGrams  decimal.Decimal `json:"required_in_grams"`
	AvailableInGrams decimal.Decimal `json:"available_in_grams"`
	ShortageInGrams  decimal.Decimal `json:"shortage_in_grams"`
}

func encodeShortages(list []entity.IngredientShortage) ([]byte, error) {
	rows := make([]shortageRow, len(list))
	for i, s := range list {
		rows[i] = shortageRow(s)
	}
	return json.Marshal(rows)
}

func decodeShortages(raw []byte) ([]entity.IngredientShortage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []shortageRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.IngredientShortage, len(rows))
	for i, r := range rows {
		out[i] = entity.IngredientShortage(r)
	}
	return out, nil
}

// AvailabilityRecordRepo registros de disponibilidad; plan_id es único.
type AvailabilityRecordRepo struct {
	q Querier
}

// NewAvailabilityRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAvailabilityRecordRepository(q Querier) *AvailabilityRecordRepo {
	return &AvailabilityRecordRepo{q: q}
}

// Create inserta el registro; ErrDuplicate si el plan ya tiene uno.
func (r *AvailabilityRecordRepo) Create(ctx context.Context, rec *entity.ProductionPlanAvailabilityRecord) error {
	shortages, err := encodeShortages(rec.Shortages)
	if err != nil {
		return fmt.Errorf("encode shortages: %w", err)
	}
	query := `
		INSERT INTO production_plan_availability_records (id, plan_id, status, shortages, total_required_in_grams,
			total_shortage_in_grams, estimated_cost, confirmed_by, actual_consumed_in_grams, actual_shortage_in_grams,
			execution_started_at, execution_completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at`
	err = r.q.QueryRow(ctx, query,
		rec.ID, rec.PlanID, rec.Status, shortages, rec.TotalRequiredInGrams,
		rec.TotalShortageInGrams, rec.EstimatedCost, rec.ConfirmedBy, rec.ActualConsumedInGrams, rec.ActualShortageInGrams,
		rec.ExecutionStartedAt, rec.ExecutionCompletedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert availability record: %w", err)
	}
	return nil
}

// GetByPlanID registro del plan; (nil, nil) si no tiene.
func (r *AvailabilityRecordRepo) GetByPlanID(ctx context.Context, planID string) (*entity.ProductionPlanAvailabilityRecord, error) {
	var rec entity.ProductionPlanAvailabilityRecord
	var shortages []byte
	err := r.q.QueryRow(ctx, `SELECT `+recordColumns+` FROM production_plan_availability_records WHERE plan_id = $1`, planID).Scan(
		&rec.ID, &rec.PlanID, &rec.Status, &shortages, &rec.TotalRequiredInGrams, &rec.TotalShortageInGrams,
		&rec.EstimatedCost, &rec.ConfirmedBy, &rec.ActualConsumedInGrams, &rec.ActualShortageInGrams,
		&rec.ExecutionStartedAt, &rec.ExecutionCompletedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability record: %w", err)
	}
	if rec.Shortages, err = decodeShortages(shortages); err != nil {
		return nil, fmt.Errorf("decode shortages: %w", err)
	}
	return &rec, nil
}

// Update persiste el estado y los datos de conciliación. Los faltantes originales no cambian.
func (r *AvailabilityRecordRepo) Update(ctx context.Context, rec *entity.ProductionPlanAvailabilityRecord) error {
	query := `
		UPDATE production_plan_availability_records SET status = $2, actual_consumed_in_grams = $3,
			actual_shortage_in_grams = $4, execution_started_at = $5, execution_completed_at = $6, updated_at = now()
		WHERE plan_id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		rec.PlanID, rec.Status, rec.ActualConsumedInGrams, rec.ActualShortageInGrams,
		rec.ExecutionStartedAt, rec.ExecutionCompletedAt,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("registro de disponibilidad", rec.PlanID)
		}
		return fmt.Errorf("update availability record: %w", err)
	}
	return nil
}
