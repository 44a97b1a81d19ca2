package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas con sus ingredientes.
type RecipeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	Create(ctx context.Context, recipe *entity.Recipe) error
}
