package production

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/recipe"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/jhoicas/Produccion-api/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// requirementsService envuelve el resolvedor de dominio con logs, métricas y spans.
// Lo comparten disponibilidad, ejecución y el desglose.
type requirementsService struct {
	recipeRepo repository.RecipeRepository
	resolver   *recipe.Resolver
	log        *logger.Logger
}

func newRequirementsService(recipeRepo repository.RecipeRepository, log *logger.Logger) *requirementsService {
	return &requirementsService{
		recipeRepo: recipeRepo,
		resolver:   recipe.NewResolver(recipeRepo),
		log:        log,
	}
}

func (s *requirementsService) loadRecipe(ctx context.Context, recipeID string) (*entity.Recipe, error) {
	if recipeID == "" {
		return nil, domain.NewValidationError("recipe_id", "requerido")
	}
	rec, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFoundf("receta", recipeID)
	}
	return rec, nil
}

func (s *requirementsService) resolve(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string) (*recipe.Requirements, error) {
	bd, err := s.run(ctx, root, quantity, unit, false)
	if err != nil {
		return nil, err
	}
	return &bd.Requirements, nil
}

func (s *requirementsService) breakdown(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string) (*recipe.Breakdown, error) {
	return s.run(ctx, root, quantity, unit, true)
}

func (s *requirementsService) run(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string, withTree bool) (bd *recipe.Breakdown, err error) {
	recipeID := ""
	if root != nil {
		recipeID = root.ID
	}
	ctx, span := telemetry.StartSpan(ctx, "recipe.ResolveRequirements",
		attribute.String("recipe_id", recipeID),
		attribute.String("quantity", quantity.String()),
		attribute.String("unit", unit),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.RecipeResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		telemetry.End(span, err)
	}()

	if withTree {
		bd, err = s.resolver.ResolveBreakdown(ctx, root, quantity, unit)
	} else {
		var reqs *recipe.Requirements
		reqs, err = s.resolver.Resolve(ctx, root, quantity, unit)
		if reqs != nil {
			bd = &recipe.Breakdown{Requirements: *reqs}
		}
	}
	if err != nil {
		s.log.Warn().Err(err).Str("recipe_id", recipeID).Msg("no se pudieron resolver los requerimientos")
		return nil, err
	}

	for _, sk := range bd.Skipped {
		s.log.Warn().
			Str("recipe_id", recipeID).
			Str("skipped_recipe_id", sk.RecipeID).
			Strs("path", sk.Path).
			Str("reason", sk.Reason).
			Msg("subreceta omitida")
	}
	s.log.Debug().
		Str("recipe_id", recipeID).
		Int("products", len(bd.Order)).
		Str("total_g", bd.Total().String()).
		Msg("requerimientos resueltos")
	return bd, nil
}
