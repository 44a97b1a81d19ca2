package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// RecordMovementInput corrección administrativa: el saldo resultante lo fija el llamador.
type RecordMovementInput struct {
	StockItemID              string
	Type                     string
	QuantityInGrams          decimal.Decimal
	ResultingQuantityInGrams decimal.Decimal
	UnitCost                 *decimal.Decimal // moneda/kg, solo se registra
	TotalCost                *decimal.Decimal
	PerformedBy              string
	Reference                string
}

// RecordStockMovement agrega un movimiento al ledger sin recalcular saldo ni costos:
// el ítem queda con ResultingQuantityInGrams y la alerta se reevalúa. Misma atomicidad que AdjustStockLevel.
func (uc *AdjustStockUseCase) RecordStockMovement(ctx context.Context, input RecordMovementInput) (res *AdjustStockResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "inventory.RecordStockMovement",
		attribute.String("stock_item_id", input.StockItemID),
		attribute.String("movement_type", input.Type),
	)
	defer func() { telemetry.End(span, err) }()

	switch {
	case input.StockItemID == "":
		return nil, domain.NewValidationError("stock_item_id", "requerido")
	case !entity.IsValidMovementType(input.Type):
		return nil, domain.NewValidationError("type", "tipo de movimiento desconocido")
	case !input.QuantityInGrams.IsPositive():
		return nil, domain.NewValidationError("quantity_in_grams", "debe ser mayor que cero")
	case input.ResultingQuantityInGrams.IsNegative():
		return nil, domain.NewValidationError("resulting_quantity_in_grams", "no puede ser negativo")
	}

	var result *AdjustStockResult
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockItemRepository,
		movRepo repository.StockMovementRepository,
		alertRepo repository.StockAlertRepository,
	) error {
		item, err := stockRepo.GetForUpdate(ctx, input.StockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NotFoundf("stock item", input.StockItemID)
		}
		mov := &entity.StockMovement{
			ID:                       uuid.New().String(),
			StockItemID:              item.ID,
			Type:                     input.Type,
			QuantityInGrams:          input.QuantityInGrams,
			PreviousQuantityInGrams:  item.CurrentQuantityInGrams,
			ResultingQuantityInGrams: input.ResultingQuantityInGrams,
			UnitCost:                 input.UnitCost,
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
	uc.afterCommit(ctx, result)
	return result, nil
}
