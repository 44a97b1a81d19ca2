package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// PlanUseCase programación de planes y su ciclo de vida manual.
type PlanUseCase struct {
	txRunner       TxRunner
	planRepo       repository.ProductionPlanRepository
	recordRepo     repository.AvailabilityRecordRepository
	divergenceRepo repository.DivergenceRepository
	recipeRepo     repository.RecipeRepository
	log            *logger.Logger
}

// NewPlanUseCase construye el caso de uso.
func NewPlanUseCase(
	txRunner TxRunner,
	planRepo repository.ProductionPlanRepository,
	recordRepo repository.AvailabilityRecordRepository,
	divergenceRepo repository.DivergenceRepository,
	recipeRepo repository.RecipeRepository,
	log *logger.Logger,
) *PlanUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanUseCase{
		txRunner:       txRunner,
		planRepo:       planRepo,
		recordRepo:     recordRepo,
		divergenceRepo: divergenceRepo,
		recipeRepo:     recipeRepo,
		log:            log.Component("scheduler"),
	}
}

// SchedulePlanInput datos del plan a crear. Status vacío equivale a draft.
type SchedulePlanInput struct {
	RecipeID        string
	QuantityInUnits decimal.Decimal
	UnitOfMeasure   string
	Status          string
	ScheduledFor    *time.Time
	Notes           string
	CreatedBy       string
}

// ScheduleResult plan creado y, si hubo faltantes, el registro de disponibilidad.
type ScheduleResult struct {
	Plan   *entity.ProductionPlan
	Record *entity.ProductionPlanAvailabilityRecord
}

// SchedulePlan crea siempre el plan. Solo si la disponibilidad no es suficiente persiste
// además el registro con los faltantes y quién confirmó programar de todos modos.
// Plan y registro se escriben en la misma transacción.
func (uc *PlanUseCase) SchedulePlan(ctx context.Context, input SchedulePlanInput, availability *Availability, confirmedBy string) (res *ScheduleResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "production.SchedulePlan",
		attribute.String("recipe_id", input.RecipeID),
	)
	defer func() { telemetry.End(span, err) }()

	if input.Status == "" {
		input.Status = entity.PlanStatusDraft
	}
	if err := validateSchedule(input, availability); err != nil {
		return nil, err
	}
	rec, err := uc.recipeRepo.GetByID(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFoundf("receta", input.RecipeID)
	}

	plan := &entity.ProductionPlan{
		ID:              uuid.New().String(),
		RecipeID:        input.RecipeID,
		QuantityInUnits: input.QuantityInUnits,
		UnitOfMeasure:   input.UnitOfMeasure,
		Status:          input.Status,
		ScheduledFor:    input.ScheduledFor,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
	}
	var record *entity.ProductionPlanAvailabilityRecord
	if availability.Status != entity.AvailabilitySufficient {
		record = &entity.ProductionPlanAvailabilityRecord{
			ID:                   uuid.New().String(),
			PlanID:               plan.ID,
			Status:               availability.Status,
			Shortages:            availability.Shortages(),
			TotalRequiredInGrams: availability.TotalRequiredInGrams,
			TotalShortageInGrams: availability.TotalShortageInGrams,
			EstimatedCost:        availability.EstimatedCost,
			ConfirmedBy:          confirmedBy,
		}
	}

	err = uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		recordRepo repository.AvailabilityRecordRepository,
		_ repository.DivergenceRepository,
	) error {
		if err := planRepo.Create(ctx, plan); err != nil {
			return err
		}
		if record == nil {
			return nil
		}
		return recordRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	metrics.PlanTransitions.WithLabelValues(plan.Status).Inc()
	ev := uc.log.Info().
		Str("plan_id", plan.ID).
		Str("recipe_id", plan.RecipeID).
		Str("status", plan.Status).
		Str("availability", availability.Status)
	if record != nil {
		ev = ev.Str("shortage_g", record.TotalShortageInGrams.String()).Str("confirmed_by", confirmedBy)
	}
	ev.Msg("plan de producción programado")
	return &ScheduleResult{Plan: plan, Record: record}, nil
}

func validateSchedule(input SchedulePlanInput, availability *Availability) error {
	if input.RecipeID == "" {
		return domain.NewValidationError("recipe_id", "requerido")
	}
	if err := validateQuantity(input.QuantityInUnits, input.UnitOfMeasure); err != nil {
		return err
	}
	if input.Status != entity.PlanStatusDraft && input.Status != entity.PlanStatusScheduled {
		return domain.NewValidationError("status", "un plan nuevo solo puede quedar en draft o scheduled")
	}
	if availability == nil {
		return domain.NewValidationError("availability", "requerida")
	}
	if availability.RecipeID != "" && availability.RecipeID != input.RecipeID {
		return domain.NewValidationError("availability", "corresponde a otra receta")
	}
	return nil
}

// TransitionStatus aplica una transición manual. in_progress y completed solo se alcanzan
// por StartProductionPlanExecution y CompleteProductionPlanWithConsumption.
func (uc *PlanUseCase) TransitionStatus(ctx context.Context, planID, to string) (*entity.ProductionPlan, error) {
	if !entity.IsValidPlanStatus(to) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	if to == entity.PlanStatusInProgress || to == entity.PlanStatusCompleted {
		return nil, domain.NewValidationError("status", "use la ejecución del plan para este estado")
	}
	var plan *entity.ProductionPlan
	err := uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		_ repository.AvailabilityRecordRepository,
		_ repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if err := checkNotClaimed(p); err != nil {
			return err
		}
		if !entity.CanTransitionPlan(p.Status, to) {
			return fmt.Errorf("plan %s: %s -> %s: %w", p.ID, p.Status, to, domain.ErrInvalidTransition)
		}
		p.Status = to
		if err := planRepo.Update(ctx, p); err != nil {
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PlanTransitions.WithLabelValues(to).Inc()
	uc.log.Info().Str("plan_id", plan.ID).Str("status", to).Msg("plan de producción actualizado")
	return plan, nil
}

// Archive marca el plan como archivado sin tocar su estado.
func (uc *PlanUseCase) Archive(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	var plan *entity.ProductionPlan
	err := uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		_ repository.AvailabilityRecordRepository,
		_ repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if p.Archived {
			plan = p
			return nil
		}
		p.Archived = true
		if err := planRepo.Update(ctx, p); err != nil {
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("plan_id", plan.ID).Msg("plan de producción archivado")
	return plan, nil
}

// Get devuelve el plan o ErrNotFound.
func (uc *PlanUseCase) Get(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	return getPlan(ctx, uc.planRepo, planID)
}

// List planes filtrados por estado (vacío = todos).
func (uc *PlanUseCase) List(ctx context.Context, status string, includeArchived bool, limit, offset int) ([]*entity.ProductionPlan, error) {
	if status != "" && !entity.IsValidPlanStatus(status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	if limit <= 0 {
		limit = 50
	}
	return uc.planRepo.List(ctx, status, includeArchived, limit, offset)
}

// ListDivergences divergencias registradas al completar el plan.
func (uc *PlanUseCase) ListDivergences(ctx context.Context, planID string) ([]*entity.ProductionDivergence, error) {
	if _, err := getPlan(ctx, uc.planRepo, planID); err != nil {
		return nil, err
	}
	return uc.divergenceRepo.ListByPlan(ctx, planID)
}

// GetAvailabilityRecord registro del plan; ErrNotFound si el plan se programó sin faltantes.
func (uc *PlanUseCase) GetAvailabilityRecord(ctx context.Context, planID string) (*entity.ProductionPlanAvailabilityRecord, error) {
	rec, err := uc.recordRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFoundf("registro de disponibilidad del plan", planID)
	}
	return rec, nil
}

func getPlan(ctx context.Context, planRepo repository.ProductionPlanRepository, planID string) (*entity.ProductionPlan, error) {
	if planID == "" {
		return nil, domain.NewValidationError("plan_id", "requerido")
	}
	p, err := planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("plan", planID)
	}
	return p, nil
}

// lockPlan como getPlan pero con el plan bloqueado hasta el fin de la tx.
func lockPlan(ctx context.Context, planRepo repository.ProductionPlanRepository, planID string) (*entity.ProductionPlan, error) {
	if planID == "" {
		return nil, domain.NewValidationError("plan_id", "requerido")
	}
	p, err := planRepo.GetForUpdate(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("plan", planID)
	}
	return p, nil
}

// checkNotClaimed falla con ErrConflict mientras otra llamada está completando el plan.
func checkNotClaimed(p *entity.ProductionPlan) error {
	if p.CompletionClaim != "" {
		return fmt.Errorf("plan %s: completación en curso: %w", p.ID, domain.ErrConflict)
	}
	return nil
}
