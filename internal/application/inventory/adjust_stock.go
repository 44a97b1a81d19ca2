package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Transiciones de alerta producidas por un ajuste.
const (
	AlertOpened          = "opened"
	AlertSeverityChanged = "severity_changed"
	AlertRefreshed       = "refreshed"
	AlertResolved        = "resolved"
)

// AdjustStockUseCase motor del ledger: muta saldos de forma atómica (bloqueo del StockItem),
// recalcula costo promedio ponderado, agrega el movimiento inmutable y evalúa la alerta del ítem.
type AdjustStockUseCase struct {
	txRunner TxRunner
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso. notifier puede ser nil.
func NewAdjustStockUseCase(txRunner TxRunner, notifier Notifier, log *logger.Logger) *AdjustStockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner: txRunner,
		notifier: notifier,
		log:      log.Component("stock_ledger"),
		now:      time.Now,
	}
}

// AdjustStockInput entrada de AdjustStockLevel.
// Para adjustment, QuantityInGrams es el saldo absoluto objetivo.
// TotalCost es obligatorio en increment/initial.
// ClampToAvailable (solo decrement) descuenta min(QuantityInGrams, saldo bloqueado) en vez de
// fallar con ErrInsufficientStock.
type AdjustStockInput struct {
	StockItemID      string
	QuantityInGrams  decimal.Decimal
	Type             string
	PerformedBy      string
	TotalCost        *decimal.Decimal
	Reference        string
	ClampToAvailable bool
}

// AdjustStockResult estado confirmado tras el ajuste.
// Movement es nil cuando un decrement acotado no encontró saldo que descontar.
type AdjustStockResult struct {
	Item            *entity.StockItem
	Movement        *entity.StockMovement
	AppliedInGrams  decimal.Decimal    // cantidad efectivamente movida
	Alert           *entity.StockAlert // nil si el ítem no tenía ni requiere alerta
	AlertTransition string             // opened, severity_changed, refreshed, resolved o vacío
}

// AdjustStockLevel valida, bloquea el StockItem y dentro de una sola transacción
// lee ítem y alerta, escribe ítem, movimiento y alerta. La notificación ocurre después del Commit.
func (uc *AdjustStockUseCase) AdjustStockLevel(ctx context.Context, input AdjustStockInput) (res *AdjustStockResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "inventory.AdjustStockLevel",
		attribute.String("stock_item_id", input.StockItemID),
		attribute.String("movement_type", input.Type),
	)
	defer func() { telemetry.End(span, err) }()

	if err := validateAdjustment(input); err != nil {
		return nil, err
	}

	var result *AdjustStockResult
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockItemRepository,
		movRepo repository.StockMovementRepository,
		alertRepo repository.StockAlertRepository,
	) error {
		// Bloquea el ítem (SELECT FOR UPDATE) para evitar updates perdidos
		item, err := stockRepo.GetForUpdate(ctx, input.StockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NotFoundf("stock item", input.StockItemID)
		}

		previous := item.CurrentQuantityInGrams
		quantity := input.QuantityInGrams
		if input.ClampToAvailable {
			quantity = decimal.Min(quantity, decimal.Max(decimal.Zero, previous))
			if !quantity.IsPositive() {
				result = &AdjustStockResult{Item: item, AppliedInGrams: decimal.Zero}
				return nil
			}
		}
		var resulting decimal.Decimal
		switch input.Type {
		case entity.MovementTypeIncrement, entity.MovementTypeInitial:
			resulting = previous.Add(quantity)
		case entity.MovementTypeDecrement:
			resulting = previous.Sub(quantity)
			if resulting.IsNegative() {
				return fmt.Errorf("stock item %s: disponible %s g, solicitado %s g: %w",
					item.ID, previous, quantity, domain.ErrInsufficientStock)
			}
		case entity.MovementTypeAdjustment:
			resulting = quantity
		}

		var unitCost *decimal.Decimal
		if input.TotalCost != nil {
			uCost := inventory.UnitCostPerKilogram(*input.TotalCost, quantity)
			unitCost = &uCost
		}
		if input.Type == entity.MovementTypeIncrement || input.Type == entity.MovementTypeInitial {
			item.AverageUnitCost = inventory.WeightedAverageCost(previous, item.AverageUnitCost, quantity, *unitCost)
			if unitCost.GreaterThan(item.HighestUnitCost) {
				item.HighestUnitCost = *unitCost
			}
		}

		mov := &entity.StockMovement{
			ID:                       uuid.New().String(),
			StockItemID:              item.ID,
			Type:                     input.Type,
			QuantityInGrams:          quantity,
			PreviousQuantityInGrams:  previous,
			ResultingQuantityInGrams: resulting,
			UnitCost:                 unitCost,
			TotalCost:                input.TotalCost,
			Reference:                input.Reference,
			PerformedBy:              input.PerformedBy,
		}
		r, err := uc.applyMovement(ctx, stockRepo, movRepo, alertRepo, item, mov)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Movement == nil {
		uc.log.Debug().Str("stock_item_id", input.StockItemID).Msg("decremento acotado sin saldo; no se registra movimiento")
		return result, nil
	}
	uc.afterCommit(ctx, result)
	return result, nil
}

func validateAdjustment(input AdjustStockInput) error {
	if input.StockItemID == "" {
		return domain.NewValidationError("stock_item_id", "requerido")
	}
	if !entity.IsValidMovementType(input.Type) {
		return domain.NewValidationError("type", fmt.Sprintf("tipo de movimiento desconocido %q", input.Type))
	}
	if !input.QuantityInGrams.IsPositive() {
		return domain.NewValidationError("quantity_in_grams", "debe ser mayor que cero")
	}
	needsCost := input.Type == entity.MovementTypeIncrement || input.Type == entity.MovementTypeInitial
	if needsCost && input.TotalCost == nil {
		return domain.NewValidationError("total_cost", "obligatorio en entradas")
	}
	if input.TotalCost != nil && input.TotalCost.IsNegative() {
		return domain.NewValidationError("total_cost", "no puede ser negativo")
	}
	if input.ClampToAvailable && input.Type != entity.MovementTypeDecrement {
		return domain.NewValidationError("clamp_to_available", "solo aplica a decrement")
	}
	return nil
}

// applyMovement persiste movimiento e ítem y evalúa la alerta; se llama dentro de la tx.
func (uc *AdjustStockUseCase) applyMovement(
	ctx context.Context,
	stockRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	alertRepo repository.StockAlertRepository,
	item *entity.StockItem,
	mov *entity.StockMovement,
) (*AdjustStockResult, error) {
	// El movimiento se persiste antes que el saldo que deriva de él
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	item.CurrentQuantityInGrams = mov.ResultingQuantityInGrams
	item.LastMovementID = mov.ID
	if err := stockRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	alert, transition, err := uc.evaluateAlert(ctx, alertRepo, item)
	if err != nil {
		return nil, err
	}
	return &AdjustStockResult{
		Item:            item,
		Movement:        mov,
		AppliedInGrams:  mov.QuantityInGrams,
		Alert:           alert,
		AlertTransition: transition,
	}, nil
}

// evaluateAlert abre, actualiza o resuelve la alerta viva del ítem según el saldo resultante.
func (uc *AdjustStockUseCase) evaluateAlert(
	ctx context.Context,
	alertRepo repository.StockAlertRepository,
	item *entity.StockItem,
) (*entity.StockAlert, string, error) {
	live, err := alertRepo.GetLiveByStockItem(ctx, item.ID)
	if err != nil {
		return nil, "", err
	}
	severity := inventory.AlertSeverityFor(item.CurrentQuantityInGrams, item.MinimumQuantityInGrams)

	switch {
	case severity == "" && live == nil:
		return nil, "", nil
	case severity == "":
		now := uc.now()
		live.Status = entity.AlertStatusResolved
		live.QuantityInGrams = item.CurrentQuantityInGrams
		live.ResolvedAt = &now
		if err := alertRepo.Update(ctx, live); err != nil {
			return nil, "", err
		}
		return live, AlertResolved, nil
	case live == nil:
		alert := &entity.StockAlert{
			ID:              uuid.New().String(),
			StockItemID:     item.ID,
			Severity:        severity,
			Status:          entity.AlertStatusOpen,
			QuantityInGrams: item.CurrentQuantityInGrams,
			MinimumInGrams:  item.MinimumQuantityInGrams,
		}
		if err := alertRepo.Create(ctx, alert); err != nil {
			return nil, "", err
		}
		return alert, AlertOpened, nil
	default:
		transition := AlertRefreshed
		if live.Severity != severity {
			transition = AlertSeverityChanged
		}
		live.Severity = severity
		live.QuantityInGrams = item.CurrentQuantityInGrams
		live.MinimumInGrams = item.MinimumQuantityInGrams
		if err := alertRepo.Update(ctx, live); err != nil {
			return nil, "", err
		}
		return live, transition, nil
	}
}

// afterCommit métricas, logs y notificación best-effort; nada de esto puede fallar la operación.
func (uc *AdjustStockUseCase) afterCommit(ctx context.Context, res *AdjustStockResult) {
	metrics.StockAdjustments.WithLabelValues(res.Movement.Type).Inc()
	uc.log.Info().
		Str("stock_item_id", res.Item.ID).
		Str("movement_id", res.Movement.ID).
		Str("type", res.Movement.Type).
		Str("previous_g", res.Movement.PreviousQuantityInGrams.String()).
		Str("resulting_g", res.Movement.ResultingQuantityInGrams.String()).
		Str("average_unit_cost", res.Item.AverageUnitCost.String()).
		Str("performed_by", res.Movement.PerformedBy).
		Msg("movimiento de stock confirmado")

	if res.AlertTransition == "" {
		return
	}
	metrics.StockAlertTransitions.WithLabelValues(res.Alert.Severity, res.AlertTransition).Inc()
	uc.log.Info().
		Str("stock_item_id", res.Item.ID).
		Str("alert_id", res.Alert.ID).
		Str("severity", res.Alert.Severity).
		Str("transition", res.AlertTransition).
		Msg("alerta de stock evaluada")

	if res.AlertTransition != AlertOpened && res.AlertTransition != AlertSeverityChanged {
		return
	}
	uc.notify(ctx, res.Item, res.Alert)
}

func (uc *AdjustStockUseCase) notify(ctx context.Context, item *entity.StockItem, alert *entity.StockAlert) {
	if uc.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Stock de %s bajo el mínimo: %s g (mínimo %s g), severidad %s",
		item.ProductID, item.CurrentQuantityInGrams.String(), item.MinimumQuantityInGrams.String(), alert.Severity)
	if err := uc.notifier.Notify(ctx, NotificationCategoryStockAlert, item.ID, msg); err != nil {
		metrics.NotificationFailures.Inc()
		uc.log.Warn().Err(err).
			Str("stock_item_id", item.ID).
			Str("alert_id", alert.ID).
			Msg("no se pudo notificar la alerta de stock")
	}
}
