package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ingrediente de una receta.
const (
	IngredientKindProduct = "product"
	IngredientKindRecipe  = "recipe"
)

// Recipe representa una receta con su rendimiento en gramos. Sus ingredientes pueden
// referenciar productos u otras recetas (subrecetas); el grafo debe ser acíclico.
type Recipe struct {
	ID           string
	Name         string
	YieldInGrams decimal.Decimal
	Ingredients  []RecipeIngredient
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipeIngredient es una línea de la receta: ReferenceID apunta a un Product o a otra Recipe según Kind.
type RecipeIngredient struct {
	ReferenceID     string
	Kind            string // product, recipe
	QuantityInGrams decimal.Decimal
}

// IsRecipe indica si el ingrediente es una subreceta.
func (i RecipeIngredient) IsRecipe() bool { return i.Kind == IngredientKindRecipe }
