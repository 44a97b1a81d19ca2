package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas e ingredientes (tabla hija ordenada por position).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Create inserta la receta y sus ingredientes. Llamar dentro de una tx para que sea atómico.
func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	query := `
		INSERT INTO recipes (id, name, yield_in_grams, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query, recipe.ID, recipe.Name, recipe.YieldInGrams).
		Scan(&recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	for i, ing := range recipe.Ingredients {
		_, err := r.q.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, position, kind, reference_id, quantity_in_grams)
			VALUES ($1, $2, $3, $4, $5)`,
			recipe.ID, i, ing.Kind, ing.ReferenceID, ing.QuantityInGrams,
		)
		if err != nil {
			return fmt.Errorf("insert recipe ingredient: %w", err)
		}
	}
	return nil
}

// GetByID carga la receta con sus ingredientes; (nil, nil) si no existe.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	var rec entity.Recipe
	err := r.q.QueryRow(ctx, `
		SELECT id, name, yield_in_grams, created_at, updated_at
		FROM recipes WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Name, &rec.YieldInGrams, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT kind, reference_id, quantity_in_grams
		FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.Kind, &ing.ReferenceID, &ing.QuantityInGrams); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}
