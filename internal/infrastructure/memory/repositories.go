package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository            = (*ProductRepo)(nil)
	_ repository.RecipeRepository             = (*RecipeRepo)(nil)
	_ repository.StockItemRepository          = (*StockItemRepo)(nil)
	_ repository.StockMovementRepository      = (*StockMovementRepo)(nil)
	_ repository.StockAlertRepository         = (*StockAlertRepo)(nil)
	_ repository.ProductionPlanRepository     = (*ProductionPlanRepo)(nil)
	_ repository.AvailabilityRecordRepository = (*AvailabilityRecordRepo)(nil)
	_ repository.DivergenceRepository         = (*DivergenceRepo)(nil)
)

// ProductRepo maestro de productos en memoria.
type ProductRepo struct{ v view }

// NewProductRepository construye el repositorio sobre el store.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{v: view{s: s}} }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		product.CreatedAt, product.UpdatedAt = now, now
		st.products[product.ID] = *product
		return nil
	})
}

// RecipeRepo recetas en memoria.
type RecipeRepo struct{ v view }

// NewRecipeRepository construye el repositorio sobre el store.
func NewRecipeRepository(s *Store) *RecipeRepo { return &RecipeRepo{v: view{s: s}} }

func (r *RecipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	r.v.read(func(st *state) {
		if rec, ok := st.recipes[id]; ok {
			c := cloneRecipe(rec)
			out = &c
		}
	})
	return out, nil
}

func (r *RecipeRepo) Create(_ context.Context, recipe *entity.Recipe) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.recipes[recipe.ID]; ok {
			return domain.ErrDuplicate
		}
		recipe.CreatedAt, recipe.UpdatedAt = now, now
		st.recipes[recipe.ID] = cloneRecipe(*recipe)
		return nil
	})
}

// StockItemRepo saldos en memoria. GetForUpdate no necesita bloqueo adicional:
// la tx ya tiene el store en exclusiva.
type StockItemRepo struct{ v view }

// NewStockItemRepository construye el repositorio sobre el store.
func NewStockItemRepository(s *Store) *StockItemRepo { return &StockItemRepo{v: view{s: s}} }

func (r *StockItemRepo) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	var out *entity.StockItem
	r.v.read(func(st *state) {
		if it, ok := st.stockItems[id]; ok {
			out = &it
		}
	})
	return out, nil
}

func (r *StockItemRepo) GetByProductID(_ context.Context, productID string) (*entity.StockItem, error) {
	var out *entity.StockItem
	r.v.read(func(st *state) {
		for _, it := range st.stockItems {
			if it.ProductID == productID {
				it := it
				out = &it
				return
			}
		}
	})
	return out, nil
}

func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.GetByID(ctx, id)
}

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.stockItems[item.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, it := range st.stockItems {
			if it.ProductID == item.ProductID {
				return domain.ErrDuplicate
			}
		}
		item.CreatedAt, item.UpdatedAt = now, now
		st.stockItems[item.ID] = *item
		return nil
	})
}

func (r *StockItemRepo) Update(_ context.Context, item *entity.StockItem) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.stockItems[item.ID]; !ok {
			return domain.NotFoundf("stock item", item.ID)
		}
		item.UpdatedAt = now
		st.stockItems[item.ID] = *item
		return nil
	})
}

// StockMovementRepo ledger append-only en memoria.
type StockMovementRepo struct{ v view }

// NewStockMovementRepository construye el repositorio sobre el store.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{v: view{s: s}}
}

func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.movements[movement.ID]; ok {
			return domain.ErrDuplicate
		}
		movement.PerformedAt = now
		st.movements[movement.ID] = *movement
		st.movementOrder = append(st.movementOrder, movement.ID)
		return nil
	})
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	r.v.read(func(st *state) {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
	})
	return out, nil
}

// ListByStockItem más recientes primero (orden de inserción inverso).
func (r *StockMovementRepo) ListByStockItem(_ context.Context, stockItemID string, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.v.read(func(st *state) {
		for i := len(st.movementOrder) - 1; i >= 0; i-- {
			m := st.movements[st.movementOrder[i]]
			if m.StockItemID == stockItemID {
				list = append(list, &m)
			}
		}
	})
	return page(list, limit, offset), nil
}

// StockAlertRepo alertas en memoria.
type StockAlertRepo struct{ v view }

// NewStockAlertRepository construye el repositorio sobre el store.
func NewStockAlertRepository(s *Store) *StockAlertRepo { return &StockAlertRepo{v: view{s: s}} }

func (r *StockAlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	r.v.read(func(st *state) {
		if a, ok := st.alerts[id]; ok {
			out = &a
		}
	})
	return out, nil
}

func (r *StockAlertRepo) GetLiveByStockItem(_ context.Context, stockItemID string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	r.v.read(func(st *state) {
		for _, a := range st.alerts {
			if a.StockItemID == stockItemID && a.IsLive() {
				a := a
				out = &a
				return
			}
		}
	})
	return out, nil
}

func (r *StockAlertRepo) ListLive(_ context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	var list []*entity.StockAlert
	r.v.read(func(st *state) {
		for _, a := range st.alerts {
			if a.IsLive() {
				a := a
				list = append(list, &a)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return page(list, limit, offset), nil
}

func (r *StockAlertRepo) Create(_ context.Context, alert *entity.StockAlert) error {
	return r.v.write(func(st *state, now time.Time) error {
		for _, a := range st.alerts {
			if a.StockItemID == alert.StockItemID && a.IsLive() {
				return domain.ErrDuplicate
			}
		}
		alert.CreatedAt, alert.UpdatedAt = now, now
		st.alerts[alert.ID] = *alert
		return nil
	})
}

func (r *StockAlertRepo) Update(_ context.Context, alert *entity.StockAlert) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.alerts[alert.ID]; !ok {
			return domain.NotFoundf("alerta", alert.ID)
		}
		alert.UpdatedAt = now
		st.alerts[alert.ID] = *alert
		return nil
	})
}

// ProductionPlanRepo planes en memoria.
type ProductionPlanRepo struct{ v view }

// NewProductionPlanRepository construye el repositorio sobre el store.
func NewProductionPlanRepository(s *Store) *ProductionPlanRepo {
	return &ProductionPlanRepo{v: view{s: s}}
}

func (r *ProductionPlanRepo) Create(_ context.Context, plan *entity.ProductionPlan) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.plans[plan.ID]; ok {
			return domain.ErrDuplicate
		}
		plan.CreatedAt, plan.UpdatedAt = now, now
		st.plans[plan.ID] = *plan
		return nil
	})
}

func (r *ProductionPlanRepo) GetByID(_ context.Context, id string) (*entity.ProductionPlan, error) {
	var out *entity.ProductionPlan
	r.v.read(func(st *state) {
		if p, ok := st.plans[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// GetForUpdate igual que GetByID: la tx ya tiene el store en exclusiva.
func (r *ProductionPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductionPlanRepo) Update(_ context.Context, plan *entity.ProductionPlan) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.plans[plan.ID]; !ok {
			return domain.NotFoundf("plan", plan.ID)
		}
		plan.UpdatedAt = now
		st.plans[plan.ID] = *plan
		return nil
	})
}

func (r *ProductionPlanRepo) List(_ context.Context, status string, includeArchived bool, limit, offset int) ([]*entity.ProductionPlan, error) {
	var list []*entity.ProductionPlan
	r.v.read(func(st *state) {
		for _, p := range st.plans {
			if status != "" && p.Status != status {
				continue
			}
			if p.Archived && !includeArchived {
				continue
			}
			p := p
			list = append(list, &p)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return page(list, limit, offset), nil
}

// AvailabilityRecordRepo registros de disponibilidad en memoria (uno por plan).
type AvailabilityRecordRepo struct{ v view }

// NewAvailabilityRecordRepository construye el repositorio sobre el store.
func NewAvailabilityRecordRepository(s *Store) *AvailabilityRecordRepo {
	return &AvailabilityRecordRepo{v: view{s: s}}
}

func (r *AvailabilityRecordRepo) Create(_ context.Context, record *entity.ProductionPlanAvailabilityRecord) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.records[record.PlanID]; ok {
			return domain.ErrDuplicate
		}
		record.CreatedAt, record.UpdatedAt = now, now
		st.records[record.PlanID] = cloneRecord(*record)
		return nil
	})
}

func (r *AvailabilityRecordRepo) GetByPlanID(_ context.Context, planID string) (*entity.ProductionPlanAvailabilityRecord, error) {
	var out *entity.ProductionPlanAvailabilityRecord
	r.v.read(func(st *state) {
		if rec, ok := st.records[planID]; ok {
			c := cloneRecord(rec)
			out = &c
		}
	})
	return out, nil
}

func (r *AvailabilityRecordRepo) Update(_ context.Context, record *entity.ProductionPlanAvailabilityRecord) error {
	return r.v.write(func(st *state, now time.Time) error {
		if _, ok := st.records[record.PlanID]; !ok {
			return domain.NotFoundf("registro de disponibilidad", record.PlanID)
		}
		record.UpdatedAt = now
		st.records[record.PlanID] = cloneRecord(*record)
		return nil
	})
}

// DivergenceRepo divergencias en memoria.
type DivergenceRepo struct{ v view }

// NewDivergenceRepository construye el repositorio sobre el store.
func NewDivergenceRepository(s *Store) *DivergenceRepo { return &DivergenceRepo{v: view{s: s}} }

func (r *DivergenceRepo) Create(_ context.Context, divergence *entity.ProductionDivergence) error {
	return r.v.write(func(st *state, now time.Time) error {
		divergence.CreatedAt = now
		st.divergences = append(st.divergences, *divergence)
		return nil
	})
}

func (r *DivergenceRepo) ListByPlan(_ context.Context, planID string) ([]*entity.ProductionDivergence, error) {
	var list []*entity.ProductionDivergence
	r.v.read(func(st *state) {
		for _, d := range st.divergences {
			if d.PlanID == planID {
				d := d
				list = append(list, &d)
			}
		}
	})
	return list, nil
}
