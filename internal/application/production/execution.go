package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	policy "github.com/jhoicas/Produccion-api/internal/domain/production"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ReferencePrefix prefijo de Reference en los movimientos generados por un plan.
const ReferencePrefix = "production_plan:"

// ExecutionUseCase inicio y cierre de planes: consume stock a través del ledger y concilia
// el registro de disponibilidad contra lo realmente consumido.
type ExecutionUseCase struct {
	txRunner    TxRunner
	planRepo    repository.ProductionPlanRepository
	productRepo repository.ProductRepository
	stockRepo   StockReader
	adjuster    StockAdjuster
	reqs        *requirementsService
	log         *logger.Logger
	now         func() time.Time
}

// NewExecutionUseCase construye el caso de uso.
func NewExecutionUseCase(
	txRunner TxRunner,
	planRepo repository.ProductionPlanRepository,
	recipeRepo repository.RecipeRepository,
	productRepo repository.ProductRepository,
	stockRepo StockReader,
	adjuster StockAdjuster,
	log *logger.Logger,
) *ExecutionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("production_execution")
	return &ExecutionUseCase{
		txRunner:    txRunner,
		planRepo:    planRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		adjuster:    adjuster,
		reqs:        newRequirementsService(recipeRepo, log),
		log:         log,
		now:         time.Now,
	}
}

// StartProductionPlanExecution pasa el plan a in_progress y sella ExecutionStartedAt en su registro.
func (uc *ExecutionUseCase) StartProductionPlanExecution(ctx context.Context, planID string) (plan *entity.ProductionPlan, err error) {
	ctx, span := telemetry.StartSpan(ctx, "production.StartExecution", attribute.String("plan_id", planID))
	defer func() { telemetry.End(span, err) }()

	err = uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		recordRepo repository.AvailabilityRecordRepository,
		_ repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if !entity.CanTransitionPlan(p.Status, entity.PlanStatusInProgress) {
			return fmt.Errorf("plan %s: %s -> %s: %w", p.ID, p.Status, entity.PlanStatusInProgress, domain.ErrInvalidTransition)
		}
		now := uc.now()
		p.Status = entity.PlanStatusInProgress
		p.StartedAt = &now
		if err := planRepo.Update(ctx, p); err != nil {
			return err
		}
		if err := stampExecutionStart(ctx, recordRepo, p.ID, now); err != nil {
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PlanTransitions.WithLabelValues(entity.PlanStatusInProgress).Inc()
	uc.log.Info().Str("plan_id", plan.ID).Msg("ejecución del plan iniciada")
	return plan, nil
}

func stampExecutionStart(ctx context.Context, recordRepo repository.AvailabilityRecordRepository, planID string, at time.Time) error {
	rec, err := recordRepo.GetByPlanID(ctx, planID)
	if err != nil || rec == nil || rec.IsSettled() || rec.ExecutionStartedAt != nil {
		return err
	}
	rec.ExecutionStartedAt = &at
	return recordRepo.Update(ctx, rec)
}

// IngredientConsumption consumo real de un producto al completar un plan.
type IngredientConsumption struct {
	ProductID        string
	StockItemID      string
	RequiredInGrams  decimal.Decimal
	ConsumedInGrams  decimal.Decimal
	ShortfallInGrams decimal.Decimal
	MovementID       string // vacío si no hubo nada que consumir
}

// CompletionResult estado final de un plan completado.
type CompletionResult struct {
	Plan             *entity.ProductionPlan
	Record           *entity.ProductionPlanAvailabilityRecord // nil si el plan no tenía registro
	Divergences      []*entity.ProductionDivergence
	Consumption      []IngredientConsumption
	FulfillmentRatio decimal.Decimal
}

// consumable producto con inventario y su ítem precargado.
type consumable struct {
	productID string
	required  decimal.Decimal
	item      *entity.StockItem
}

// CompleteProductionPlanWithConsumption re-resuelve los requerimientos del plan, descuenta de cada
// ítem min(requerido, disponible) y registra una divergencia por cada faltante. La producción real
// es la cantidad planificada escalada por la menor razón de cumplimiento.
//
// Plan, receta, productos e ítems se cargan antes de tocar nada: un NotFound aborta sin mutar.
// Después el plan se reclama bajo bloqueo, así una segunda llamada concurrente falla con
// ErrConflict antes del primer descuento. Cada descuento es atómico por ítem pero la operación
// completa no lo es.
func (uc *ExecutionUseCase) CompleteProductionPlanWithConsumption(ctx context.Context, planID, performedBy string) (res *CompletionResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "production.CompleteWithConsumption", attribute.String("plan_id", planID))
	defer func() { telemetry.End(span, err) }()

	plan, err := getPlan(ctx, uc.planRepo, planID)
	if err != nil {
		return nil, err
	}
	if err := checkCompletable(plan); err != nil {
		return nil, err
	}
	rec, err := uc.reqs.loadRecipe(ctx, plan.RecipeID)
	if err != nil {
		return nil, err
	}
	reqs, err := uc.reqs.resolve(ctx, rec, plan.QuantityInUnits, plan.UnitOfMeasure)
	if err != nil {
		return nil, err
	}
	items, err := uc.preload(ctx, reqs.Order, reqs.ByProduct)
	if err != nil {
		return nil, err
	}

	claim, err := uc.claim(ctx, planID)
	if err != nil {
		return nil, err
	}

	res = &CompletionResult{FulfillmentRatio: decimal.NewFromInt(1)}
	consumedTotal, shortfallTotal := decimal.Zero, decimal.Zero
	for _, c := range items {
		row, div, err := uc.consume(ctx, plan.ID, performedBy, c)
		if err != nil {
			uc.log.Error().Err(err).
				Str("plan_id", plan.ID).
				Str("product_id", c.productID).
				Int("consumed_products", len(res.Consumption)).
				Int("divergences", len(res.Divergences)).
				Msg("consumo interrumpido; el stock ya descontado no se revierte")
			uc.release(ctx, plan.ID, claim, res.Divergences)
			return nil, err
		}
		res.Consumption = append(res.Consumption, *row)
		consumedTotal = consumedTotal.Add(row.ConsumedInGrams)
		shortfallTotal = shortfallTotal.Add(row.ShortfallInGrams)
		if div != nil {
			res.Divergences = append(res.Divergences, div)
		}
		res.FulfillmentRatio = decimal.Min(res.FulfillmentRatio, policy.FulfillmentRatio(row.RequiredInGrams, row.ConsumedInGrams))
	}
	actual := plan.QuantityInUnits.Mul(res.FulfillmentRatio)

	err = uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		recordRepo repository.AvailabilityRecordRepository,
		divergenceRepo repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if p.CompletionClaim != claim || p.Status != entity.PlanStatusInProgress {
			return fmt.Errorf("plan %s: la completación perdió su reclamo (estado %s): %w", p.ID, p.Status, domain.ErrConflict)
		}
		now := uc.now()
		p.Status = entity.PlanStatusCompleted
		p.CompletedAt = &now
		p.ActualQuantityInUnits = &actual
		p.CompletionClaim = ""
		if err := planRepo.Update(ctx, p); err != nil {
			return err
		}
		if err := createDivergences(ctx, divergenceRepo, res.Divergences); err != nil {
			return err
		}
		record, err := recordRepo.GetByPlanID(ctx, p.ID)
		if err != nil {
			return err
		}
		if record != nil && !record.IsSettled() {
			record.Status = entity.AvailabilityFulfilled
			if shortfallTotal.IsPositive() {
				record.Status = entity.AvailabilityReconciled
			}
			if record.ExecutionStartedAt == nil {
				record.ExecutionStartedAt = p.StartedAt
			}
			record.ExecutionCompletedAt = &now
			consumed, shortfall := consumedTotal, shortfallTotal
			record.ActualConsumedInGrams = &consumed
			record.ActualShortageInGrams = &shortfall
			if err := recordRepo.Update(ctx, record); err != nil {
				return err
			}
		}
		res.Plan = p
		res.Record = record
		return nil
	})
	if err != nil {
		uc.release(ctx, plan.ID, claim, res.Divergences)
		return nil, err
	}

	metrics.PlanTransitions.WithLabelValues(entity.PlanStatusCompleted).Inc()
	for _, d := range res.Divergences {
		metrics.Divergences.WithLabelValues(d.Type, d.Severity).Inc()
	}
	uc.log.Info().
		Str("plan_id", plan.ID).
		Str("planned", plan.QuantityInUnits.String()).
		Str("actual", actual.String()).
		Str("consumed_g", consumedTotal.String()).
		Str("shortfall_g", shortfallTotal.String()).
		Int("divergences", len(res.Divergences)).
		Msg("plan de producción completado")
	return res, nil
}

// claim bloquea el plan, verifica que se pueda completar y que nadie más lo esté completando,
// lo deja en in_progress y guarda un token de reclamo. Devuelve el token.
func (uc *ExecutionUseCase) claim(ctx context.Context, planID string) (string, error) {
	token := uuid.New().String()
	started := false
	err := uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		recordRepo repository.AvailabilityRecordRepository,
		_ repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if err := checkCompletable(p); err != nil {
			return err
		}
		if err := checkNotClaimed(p); err != nil {
			return err
		}
		if p.Status == entity.PlanStatusScheduled {
			now := uc.now()
			p.Status = entity.PlanStatusInProgress
			p.StartedAt = &now
			if err := stampExecutionStart(ctx, recordRepo, p.ID, now); err != nil {
				return err
			}
			started = true
		}
		p.CompletionClaim = token
		return planRepo.Update(ctx, p)
	})
	if err != nil {
		return "", err
	}
	if started {
		metrics.PlanTransitions.WithLabelValues(entity.PlanStatusInProgress).Inc()
	}
	return token, nil
}

// release libera el reclamo tras un fallo y persiste las divergencias ya detectadas: el stock
// que describen quedó descontado. El plan queda en in_progress. Best-effort: un error se registra.
func (uc *ExecutionUseCase) release(ctx context.Context, planID, claim string, divergences []*entity.ProductionDivergence) {
	// El llamador pudo haber cancelado ctx; el reclamo se libera igual.
	ctx = context.WithoutCancel(ctx)
	err := uc.txRunner.Run(ctx, func(
		planRepo repository.ProductionPlanRepository,
		_ repository.AvailabilityRecordRepository,
		divergenceRepo repository.DivergenceRepository,
	) error {
		p, err := lockPlan(ctx, planRepo, planID)
		if err != nil {
			return err
		}
		if p.CompletionClaim != claim {
			return nil
		}
		p.CompletionClaim = ""
		if err := planRepo.Update(ctx, p); err != nil {
			return err
		}
		return createDivergences(ctx, divergenceRepo, divergences)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("plan_id", planID).Msg("no se pudo liberar el reclamo del plan")
		return
	}
	for _, d := range divergences {
		metrics.Divergences.WithLabelValues(d.Type, d.Severity).Inc()
	}
}

func createDivergences(ctx context.Context, divergenceRepo repository.DivergenceRepository, divergences []*entity.ProductionDivergence) error {
	for _, d := range divergences {
		if err := divergenceRepo.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func checkCompletable(p *entity.ProductionPlan) error {
	if p.Status == entity.PlanStatusScheduled || p.Status == entity.PlanStatusInProgress {
		return nil
	}
	return fmt.Errorf("plan %s: %s -> %s: %w", p.ID, p.Status, entity.PlanStatusCompleted, domain.ErrInvalidTransition)
}

// preload carga producto e ítem de cada requerimiento; los productos sin inventario se omiten.
func (uc *ExecutionUseCase) preload(ctx context.Context, order []string, required map[string]decimal.Decimal) ([]consumable, error) {
	out := make([]consumable, 0, len(order))
	for _, productID := range order {
		product, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.NotFoundf("producto", productID)
		}
		if !product.TrackInventory {
			continue
		}
		item, err := uc.stockRepo.GetByProductID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.NotFoundf("stock item del producto", productID)
		}
		out = append(out, consumable{productID: productID, required: required[productID], item: item})
	}
	return out, nil
}

// consume descuenta min(requerido, saldo) del ítem. El acotado ocurre dentro de la tx del ledger,
// con el ítem bloqueado, así un consumo concurrente reduce lo consumido en vez de hacer fallar el plan.
func (uc *ExecutionUseCase) consume(ctx context.Context, planID, performedBy string, c consumable) (*IngredientConsumption, *entity.ProductionDivergence, error) {
	consumed := decimal.Zero
	movementID := ""
	if c.required.IsPositive() {
		adj, err := uc.adjuster.AdjustStockLevel(ctx, inventory.AdjustStockInput{
			StockItemID:      c.item.ID,
			QuantityInGrams:  c.required,
			Type:             entity.MovementTypeDecrement,
			PerformedBy:      performedBy,
			Reference:        ReferencePrefix + planID,
			ClampToAvailable: true,
		})
		if err != nil {
			return nil, nil, err
		}
		consumed = adj.AppliedInGrams
		if adj.Movement != nil {
			movementID = adj.Movement.ID
		}
	}
	row := &IngredientConsumption{
		ProductID:        c.productID,
		StockItemID:      c.item.ID,
		RequiredInGrams:  c.required,
		ConsumedInGrams:  consumed,
		ShortfallInGrams: c.required.Sub(consumed),
		MovementID:       movementID,
	}
	if !row.ShortfallInGrams.IsPositive() {
		return row, nil, nil
	}

	fraction := policy.ShortfallFraction(c.required, consumed)
	div := &entity.ProductionDivergence{
		ID:                      uuid.New().String(),
		PlanID:                  planID,
		ProductID:               c.productID,
		Severity:                policy.DivergenceSeverity(fraction),
		Type:                    entity.DivergenceTypeIngredientShortage,
		ExpectedQuantityInUnits: c.required,
		ActualQuantityInUnits:   consumed,
		Description: fmt.Sprintf("Faltante previsto de %s g de %s: requerido %s g, disponible %s g",
			row.ShortfallInGrams.String(), c.productID, c.required.String(), consumed.String()),
		ReportedBy: performedBy,
	}
	uc.log.Warn().
		Str("plan_id", planID).
		Str("product_id", c.productID).
		Str("severity", div.Severity).
		Str("shortfall_g", row.ShortfallInGrams.String()).
		Msg("divergencia de producción")
	return row, div, nil
}
