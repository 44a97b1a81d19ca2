package http

import (
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/recipe"
)

func toStockItemResponse(s *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ID:                     s.ID,
		ProductID:              s.ProductID,
		CurrentQuantityInGrams: s.CurrentQuantityInGrams,
		MinimumQuantityInGrams: s.MinimumQuantityInGrams,
		AverageUnitCost:        s.AverageUnitCost,
		HighestUnitCost:        s.HighestUnitCost,
		LastMovementID:         s.LastMovementID,
		UpdatedAt:              s.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:                       m.ID,
		StockItemID:              m.StockItemID,
		Type:                     m.Type,
		QuantityInGrams:          m.QuantityInGrams,
		PreviousQuantityInGrams:  m.PreviousQuantityInGrams,
		ResultingQuantityInGrams: m.ResultingQuantityInGrams,
		UnitCost:                 m.UnitCost,
		TotalCost:                m.TotalCost,
		Reference:                m.Reference,
		PerformedBy:              m.PerformedBy,
		PerformedAt:              m.PerformedAt,
	}
}

func toAlertResponse(a *entity.StockAlert) dto.StockAlertResponse {
	return dto.StockAlertResponse{
		ID:              a.ID,
		StockItemID:     a.StockItemID,
		Severity:        a.Severity,
		Status:          a.Status,
		QuantityInGrams: a.QuantityInGrams,
		MinimumInGrams:  a.MinimumInGrams,
		AcknowledgedBy:  a.AcknowledgedBy,
		ResolvedAt:      a.ResolvedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAdjustResponse(r *inventory.AdjustStockResult) dto.AdjustStockResponse {
	out := dto.AdjustStockResponse{
		Item:            toStockItemResponse(r.Item),
		Movement:        toMovementResponse(r.Movement),
		AlertTransition: r.AlertTransition,
	}
	if r.Alert != nil {
		a := toAlertResponse(r.Alert)
		out.Alert = &a
	}
	return out
}

func toSkipped(list []recipe.SkippedSubtree) []dto.SkippedSubtreeResponse {
	if len(list) == 0 {
		return nil
	}
	out := make([]dto.SkippedSubtreeResponse, len(list))
	for i, s := range list {
		out[i] = dto.SkippedSubtreeResponse{RecipeID: s.RecipeID, Path: s.Path, Reason: s.Reason}
	}
	return out
}

func toAvailabilityResponse(a *production.Availability) dto.AvailabilityResponse {
	products := make([]dto.ProductAvailabilityResponse, len(a.Products))
	for i, p := range a.Products {
		products[i] = dto.ProductAvailabilityResponse{
			ProductID:        p.ProductID,
			Tracked:          p.Tracked,
			RequiredInGrams:  p.RequiredInGrams,
			AvailableInGrams: p.AvailableInGrams,
			ShortageInGrams:  p.ShortageInGrams,
			UnitCost:         p.UnitCost,
			EstimatedCost:    p.EstimatedCost,
		}
	}
	return dto.AvailabilityResponse{
		RecipeID:              a.RecipeID,
		Quantity:              a.Quantity,
		Unit:                  a.Unit,
		Status:                a.Status,
		Products:              products,
		TotalRequiredInGrams:  a.TotalRequiredInGrams,
		TotalAvailableInGrams: a.TotalAvailableInGrams,
		TotalShortageInGrams:  a.TotalShortageInGrams,
		EstimatedCost:         a.EstimatedCost,
		Skipped:               toSkipped(a.Skipped),
	}
}

func toNodeResponse(n *recipe.Node) *dto.BreakdownNodeResponse {
	if n == nil {
		return nil
	}
	out := &dto.BreakdownNodeResponse{
		Kind:            n.Kind,
		ReferenceID:     n.ReferenceID,
		IngredientGrams: n.IngredientGrams,
		RequiredInGrams: n.RequiredInGrams,
		Skipped:         n.Skipped,
	}
	if n.Kind == entity.IngredientKindRecipe {
		bf := n.BatchFactor
		out.BatchFactor = &bf
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, toNodeResponse(child))
	}
	return out
}

func toBreakdownResponse(b *recipe.Breakdown) dto.BreakdownResponse {
	reqs := make([]dto.RequirementResponse, 0, len(b.Order))
	for _, id := range b.Order {
		reqs = append(reqs, dto.RequirementResponse{ProductID: id, RequiredInGrams: b.ByProduct[id]})
	}
	return dto.BreakdownResponse{
		Requirements: reqs,
		Tree:         toNodeResponse(b.Root),
		Skipped:      toSkipped(b.Skipped),
	}
}

func toPlanResponse(p *entity.ProductionPlan) dto.ProductionPlanResponse {
	return dto.ProductionPlanResponse{
		ID:                    p.ID,
		RecipeID:              p.RecipeID,
		QuantityInUnits:       p.QuantityInUnits,
		UnitOfMeasure:         p.UnitOfMeasure,
		Status:                p.Status,
		ActualQuantityInUnits: p.ActualQuantityInUnits,
		ScheduledFor:          p.ScheduledFor,
		Notes:                 p.Notes,
		Archived:              p.Archived,
		CreatedBy:             p.CreatedBy,
		StartedAt:             p.StartedAt,
		CompletedAt:           p.CompletedAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toRecordResponse(r *entity.ProductionPlanAvailabilityRecord) *dto.AvailabilityRecordResponse {
	if r == nil {
		return nil
	}
	shortages := make([]dto.IngredientShortageResponse, len(r.Shortages))
	for i, s := range r.Shortages {
		shortages[i] = dto.IngredientShortageResponse{
			ProductID:        s.ProductID,
			RequiredInGrams:  s.RequiredInGrams,
			AvailableInGrams: s.AvailableInGrams,
			ShortageInGrams:  s.ShortageInGrams,
		}
	}
	return &dto.AvailabilityRecordResponse{
		ID:                    r.ID,
		PlanID:                r.PlanID,
		Status:                r.Status,
		Shortages:             shortages,
		TotalRequiredInGrams:  r.TotalRequiredInGrams,
		TotalShortageInGrams:  r.TotalShortageInGrams,
		EstimatedCost:         r.EstimatedCost,
		ConfirmedBy:           r.ConfirmedBy,
		ActualConsumedInGrams: r.ActualConsumedInGrams,
		ActualShortageInGrams: r.ActualShortageInGrams,
		ExecutionStartedAt:    r.ExecutionStartedAt,
		ExecutionCompletedAt:  r.ExecutionCompletedAt,
	}
}

func toDivergenceResponses(list []*entity.ProductionDivergence) []dto.DivergenceResponse {
	out := make([]dto.DivergenceResponse, len(list))
	for i, d := range list {
		out[i] = dto.DivergenceResponse{
			ID:                      d.ID,
			PlanID:                  d.PlanID,
			ProductID:               d.ProductID,
			Severity:                d.Severity,
			Type:                    d.Type,
			ExpectedQuantityInUnits: d.ExpectedQuantityInUnits,
			ActualQuantityInUnits:   d.ActualQuantityInUnits,
			Description:             d.Description,
			ReportedBy:              d.ReportedBy,
			CreatedAt:               d.CreatedAt,
		}
	}
	return out
}

func toCompletionResponse(r *production.CompletionResult) dto.CompletionResponse {
	consumption := make([]dto.ConsumptionResponse, len(r.Consumption))
	for i, c := range r.Consumption {
		consumption[i] = dto.ConsumptionResponse{
			ProductID:        c.ProductID,
			StockItemID:      c.StockItemID,
			RequiredInGrams:  c.RequiredInGrams,
			ConsumedInGrams:  c.ConsumedInGrams,
			ShortfallInGrams: c.ShortfallInGrams,
			MovementID:       c.MovementID,
		}
	}
	return dto.CompletionResponse{
		Plan:             toPlanResponse(r.Plan),
		Record:           toRecordResponse(r.Record),
		Divergences:      toDivergenceResponses(r.Divergences),
		Consumption:      consumption,
		FulfillmentRatio: r.FulfillmentRatio,
	}
}
