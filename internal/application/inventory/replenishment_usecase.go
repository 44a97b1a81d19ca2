package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// maxReplenishmentAlerts tope de alertas vivas consideradas en una lista.
const maxReplenishmentAlerts = 500

// ReplenishmentUseCase genera la lista de reposición a partir de las alertas vivas.
type ReplenishmentUseCase struct {
	alertRepo   repository.StockAlertRepository
	stockRepo   repository.StockItemRepository
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	alertRepo repository.StockAlertRepository,
	stockRepo repository.StockItemRepository,
	productRepo repository.ProductRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		alertRepo:   alertRepo,
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

// GenerateReplenishmentList devuelve los ítems bajo su mínimo con la cantidad sugerida
// para llevarlos a 1.5 veces el mínimo, priorizando alertas críticas y luego mayor déficit relativo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	alerts, err := uc.alertRepo.ListLive(ctx, maxReplenishmentAlerts, 0)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	idealFactor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(alerts))
	for _, alert := range alerts {
		item, err := uc.stockRepo.GetByID(ctx, alert.StockItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		name := item.ProductID
		if p, _ := uc.productRepo.GetByID(ctx, item.ProductID); p != nil {
			name = p.Name
		}

		ideal := item.MinimumQuantityInGrams.Mul(idealFactor)
		suggested := ideal.Sub(item.CurrentQuantityInGrams)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		unitCost := item.ReferenceUnitCost()

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			StockItemID:        item.ID,
			ProductID:          item.ProductID,
			ProductName:        name,
			Severity:           alert.Severity,
			CurrentInGrams:     item.CurrentQuantityInGrams,
			MinimumInGrams:     item.MinimumQuantityInGrams,
			IdealInGrams:       ideal,
			SuggestedInGrams:   suggested,
			UnitCost:           unitCost,
			EstimatedOrderCost: inventory.CostForGrams(suggested, unitCost),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Severity != b.Severity {
			return a.Severity == entity.AlertSeverityCritical
		}
		return relativeDeficit(a).GreaterThan(relativeDeficit(b))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func relativeDeficit(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if !s.MinimumInGrams.IsPositive() {
		return decimal.Zero
	}
	return s.MinimumInGrams.Sub(s.CurrentInGrams).Div(s.MinimumInGrams)
}
