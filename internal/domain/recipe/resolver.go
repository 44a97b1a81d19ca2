package recipe

import (
	"context"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

// Loader carga recetas por id. Devuelve (nil, nil) cuando la receta no existe.
type Loader interface {
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
}

// Requirements requerimientos planos por producto en gramos.
// Order conserva el orden en que cada producto apareció por primera vez en el recorrido.
type Requirements struct {
	ByProduct map[string]decimal.Decimal
	Order     []string
	Skipped   []SkippedSubtree
}

// Total suma los gramos requeridos de todos los productos.
func (r *Requirements) Total() decimal.Decimal {
	total := decimal.Zero
	for _, q := range r.ByProduct {
		total = total.Add(q)
	}
	return total
}

// SkippedSubtree subreceta omitida por rendimiento inválido; no es un error.
type SkippedSubtree struct {
	RecipeID string
	Path     []string
	Reason   string
}

// Node nodo del árbol de desglose; refleja el recorrido de la resolución.
type Node struct {
	Kind            string
	ReferenceID     string
	IngredientGrams decimal.Decimal // cantidad declarada en la receta padre
	RequiredInGrams decimal.Decimal // cantidad escalada por el factor de lote
	BatchFactor     decimal.Decimal // solo para recetas
	Skipped         bool
	Children        []*Node
}

// Breakdown totales más el árbol de desglose.
type Breakdown struct {
	Requirements
	Root *Node
}

// BatchFactor convierte la cantidad solicitada en número de rendimientos de la receta.
// En gramos (o kg) es cantidad / rendimiento; en unidades es la cantidad misma.
// Devuelve cero si el rendimiento no es positivo, lo que omite el subárbol.
func BatchFactor(quantity decimal.Decimal, unit string, yieldInGrams decimal.Decimal) decimal.Decimal {
	switch unit {
	case entity.UnitGrams, entity.UnitKilograms:
		if !yieldInGrams.IsPositive() {
			return decimal.Zero
		}
		grams := quantity
		if unit == entity.UnitKilograms {
			grams = quantity.Mul(gramsPerKilogram)
		}
		return grams.Div(yieldInGrams)
	default:
		return quantity
	}
}

// Resolver expande una receta anidada en requerimientos planos por producto.
type Resolver struct {
	loader Loader
}

// NewResolver construye el resolvedor con el cargador de recetas.
func NewResolver(loader Loader) *Resolver {
	return &Resolver{loader: loader}
}

// Resolve devuelve los gramos requeridos de cada producto para producir quantity (en unit) de root.
// Un producto alcanzado por varias ramas acumula la suma. Falla con CycleError si una receta
// reaparece en su propia ruta, sin devolver resultados parciales.
func (r *Resolver) Resolve(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string) (*Requirements, error) {
	res, err := r.run(ctx, root, quantity, unit, false)
	if err != nil {
		return nil, err
	}
	return &res.reqs, nil
}

// ResolveBreakdown igual que Resolve pero además construye el árbol del recorrido.
func (r *Resolver) ResolveBreakdown(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string) (*Breakdown, error) {
	res, err := r.run(ctx, root, quantity, unit, true)
	if err != nil {
		return nil, err
	}
	return &Breakdown{Requirements: res.reqs, Root: res.root}, nil
}

func (r *Resolver) run(ctx context.Context, root *entity.Recipe, quantity decimal.Decimal, unit string, withTree bool) (*resolution, error) {
	if root == nil {
		return nil, domain.NewValidationError("recipe", "receta requerida")
	}
	if !quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	res := &resolution{
		loader:   r.loader,
		cache:    map[string]*entity.Recipe{root.ID: root},
		reqs:     Requirements{ByProduct: make(map[string]decimal.Decimal)},
		withTree: withTree,
	}
	factor := BatchFactor(quantity, unit, root.YieldInGrams)
	if withTree {
		res.root = &Node{
			Kind:            entity.IngredientKindRecipe,
			ReferenceID:     root.ID,
			IngredientGrams: quantity,
			RequiredInGrams: quantity,
			BatchFactor:     factor,
		}
	}
	if !factor.IsPositive() {
		res.skip(root.ID, []string{root.ID}, "rendimiento inválido")
		if res.root != nil {
			res.root.Skipped = true
		}
		return res, nil
	}
	if err := res.walk(ctx, root, factor, res.root); err != nil {
		return nil, err
	}
	return res, nil
}

// resolution estado de una llamada: acumulador, pila de la ruta actual y caché de recetas.
// Vive solo durante la llamada; no se comparte.
type resolution struct {
	loader   Loader
	cache    map[string]*entity.Recipe
	stack    []string
	reqs     Requirements
	withTree bool
	root     *Node
}

func (res *resolution) walk(ctx context.Context, rec *entity.Recipe, factor decimal.Decimal, node *Node) error {
	res.stack = append(res.stack, rec.ID)
	defer func() { res.stack = res.stack[:len(res.stack)-1] }()

	for _, ing := range rec.Ingredients {
		required := ing.QuantityInGrams.Mul(factor)
		if !required.IsPositive() {
			continue
		}
		var child *Node
		if node != nil {
			child = &Node{Kind: ing.Kind, ReferenceID: ing.ReferenceID, IngredientGrams: ing.QuantityInGrams, RequiredInGrams: required}
			node.Children = append(node.Children, child)
		}

		if !ing.IsRecipe() {
			res.add(ing.ReferenceID, required)
			continue
		}

		if res.onPath(ing.ReferenceID) {
			path := make([]string, len(res.stack), len(res.stack)+1)
			copy(path, res.stack)
			return &domain.CycleError{Path: append(path, ing.ReferenceID)}
		}
		sub, err := res.load(ctx, ing.ReferenceID)
		if err != nil {
			return err
		}
		if !sub.YieldInGrams.IsPositive() {
			res.skip(sub.ID, append(append([]string{}, res.stack...), sub.ID), "rendimiento inválido")
			if child != nil {
				child.Skipped = true
			}
			continue
		}
		subFactor := required.Div(sub.YieldInGrams)
		if child != nil {
			child.BatchFactor = subFactor
		}
		if err := res.walk(ctx, sub, subFactor, child); err != nil {
			return err
		}
	}
	return nil
}

func (res *resolution) add(productID string, grams decimal.Decimal) {
	prev, ok := res.reqs.ByProduct[productID]
	if !ok {
		res.reqs.Order = append(res.reqs.Order, productID)
	}
	res.reqs.ByProduct[productID] = prev.Add(grams)
}

func (res *resolution) skip(recipeID string, path []string, reason string) {
	res.reqs.Skipped = append(res.reqs.Skipped, SkippedSubtree{RecipeID: recipeID, Path: path, Reason: reason})
}

func (res *resolution) onPath(id string) bool {
	for _, s := range res.stack {
		if s == id {
			return true
		}
	}
	return false
}

func (res *resolution) load(ctx context.Context, id string) (*entity.Recipe, error) {
	if rec, ok := res.cache[id]; ok {
		return rec, nil
	}
	rec, err := res.loader.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cargar receta %s: %w", id, err)
	}
	if rec == nil {
		return nil, domain.NotFoundf("receta", id)
	}
	res.cache[id] = rec
	return rec, nil
}
