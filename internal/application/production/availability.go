package production

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/recipe"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ProductAvailability fila del desglose por producto.
// Un producto sin inventario (Tracked=false) nunca tiene faltante.
type ProductAvailability struct {
	ProductID        string
	Tracked          bool
	RequiredInGrams  decimal.Decimal
	AvailableInGrams decimal.Decimal
	ShortageInGrams  decimal.Decimal
	UnitCost         decimal.Decimal // moneda/kg
	EstimatedCost    decimal.Decimal
}

// Availability resultado de CheckProductionPlanAvailability.
type Availability struct {
	RecipeID              string
	Quantity              decimal.Decimal
	Unit                  string
	Status                string // sufficient | insufficient
	Products              []ProductAvailability
	TotalRequiredInGrams  decimal.Decimal
	TotalAvailableInGrams decimal.Decimal
	TotalShortageInGrams  decimal.Decimal
	EstimatedCost         decimal.Decimal
	Skipped               []recipe.SkippedSubtree
}

// Shortages filas con faltante positivo, en el formato del registro de disponibilidad.
func (a *Availability) Shortages() []entity.IngredientShortage {
	var out []entity.IngredientShortage
	for _, p := range a.Products {
		if !p.ShortageInGrams.IsPositive() {
			continue
		}
		out = append(out, entity.IngredientShortage{
			ProductID:        p.ProductID,
			RequiredInGrams:  p.RequiredInGrams,
			AvailableInGrams: p.AvailableInGrams,
			ShortageInGrams:  p.ShortageInGrams,
		})
	}
	return out
}

// AvailabilityUseCase compara los requerimientos de una receta contra el stock actual.
type AvailabilityUseCase struct {
	reqs        *requirementsService
	productRepo repository.ProductRepository
	stockRepo   StockReader
	log         *logger.Logger
}

// NewAvailabilityUseCase construye el caso de uso.
func NewAvailabilityUseCase(
	recipeRepo repository.RecipeRepository,
	productRepo repository.ProductRepository,
	stockRepo StockReader,
	log *logger.Logger,
) *AvailabilityUseCase {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("availability")
	return &AvailabilityUseCase{
		reqs:        newRequirementsService(recipeRepo, log),
		productRepo: productRepo,
		stockRepo:   stockRepo,
		log:         log,
	}
}

// CheckForRecipe carga la receta por id y verifica disponibilidad.
func (uc *AvailabilityUseCase) CheckForRecipe(ctx context.Context, recipeID string, quantity decimal.Decimal, unit string) (*Availability, error) {
	rec, err := uc.reqs.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return uc.CheckProductionPlanAvailability(ctx, rec, quantity, unit)
}

// CheckProductionPlanAvailability resuelve los requerimientos y calcula, por producto,
// faltante = max(0, requerido - disponible). El costo estimado usa el costo promedio
// del ítem (o el más alto si el promedio es cero).
func (uc *AvailabilityUseCase) CheckProductionPlanAvailability(ctx context.Context, rec *entity.Recipe, quantity decimal.Decimal, unit string) (res *Availability, err error) {
	if err := validateQuantity(quantity, unit); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NewValidationError("recipe", "receta requerida")
	}
	ctx, span := telemetry.StartSpan(ctx, "production.CheckAvailability",
		attribute.String("recipe_id", rec.ID),
	)
	defer func() { telemetry.End(span, err) }()

	reqs, err := uc.reqs.resolve(ctx, rec, quantity, unit)
	if err != nil {
		return nil, err
	}

	res = &Availability{
		RecipeID: rec.ID,
		Quantity: quantity,
		Unit:     unit,
		Status:   entity.AvailabilitySufficient,
		Products: make([]ProductAvailability, 0, len(reqs.Order)),
		Skipped:  reqs.Skipped,
	}
	for _, productID := range reqs.Order {
		row, err := uc.productAvailability(ctx, productID, reqs.ByProduct[productID])
		if err != nil {
			return nil, err
		}
		res.Products = append(res.Products, *row)
		res.TotalRequiredInGrams = res.TotalRequiredInGrams.Add(row.RequiredInGrams)
		res.TotalAvailableInGrams = res.TotalAvailableInGrams.Add(row.AvailableInGrams)
		res.TotalShortageInGrams = res.TotalShortageInGrams.Add(row.ShortageInGrams)
		res.EstimatedCost = res.EstimatedCost.Add(row.EstimatedCost)
	}
	if res.TotalShortageInGrams.IsPositive() {
		res.Status = entity.AvailabilityInsufficient
	}

	metrics.AvailabilityChecks.WithLabelValues(res.Status).Inc()
	uc.log.Info().
		Str("recipe_id", rec.ID).
		Str("status", res.Status).
		Str("required_g", res.TotalRequiredInGrams.String()).
		Str("shortage_g", res.TotalShortageInGrams.String()).
		Msg("disponibilidad verificada")
	return res, nil
}

func (uc *AvailabilityUseCase) productAvailability(ctx context.Context, productID string, required decimal.Decimal) (*ProductAvailability, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("producto", productID)
	}
	row := &ProductAvailability{ProductID: productID, Tracked: product.TrackInventory, RequiredInGrams: required}
	if !product.TrackInventory {
		return row, nil
	}
	item, err := uc.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("stock item del producto", productID)
	}
	row.AvailableInGrams = item.CurrentQuantityInGrams
	row.ShortageInGrams = decimal.Max(decimal.Zero, required.Sub(item.CurrentQuantityInGrams))
	row.UnitCost = item.ReferenceUnitCost()
	row.EstimatedCost = inventory.CostForGrams(required, row.UnitCost)
	return row, nil
}

// Breakdown desglose diagnóstico: totales más el árbol del recorrido.
func (uc *AvailabilityUseCase) Breakdown(ctx context.Context, recipeID string, quantity decimal.Decimal, unit string) (*recipe.Breakdown, error) {
	if err := validateQuantity(quantity, unit); err != nil {
		return nil, err
	}
	rec, err := uc.reqs.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return uc.reqs.breakdown(ctx, rec, quantity, unit)
}

func validateQuantity(quantity decimal.Decimal, unit string) error {
	if !quantity.IsPositive() {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	switch unit {
	case entity.UnitGrams, entity.UnitKilograms, entity.UnitUnits:
		return nil
	}
	return domain.NewValidationError("unit", "unidad desconocida")
}
