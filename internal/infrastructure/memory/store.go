// Package memory implementa los puertos de persistencia en memoria, para pruebas y
// para ejecutar el motor sin base de datos.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// state conjunto de documentos. Se guarda por valor para que nadie fuera del store
// pueda mutar lo persistido a través de un puntero.
type state struct {
	products      map[string]entity.Product
	recipes       map[string]entity.Recipe
	stockItems    map[string]entity.StockItem
	movements     map[string]entity.StockMovement
	movementOrder []string
	alerts        map[string]entity.StockAlert
	plans         map[string]entity.ProductionPlan
	records       map[string]entity.ProductionPlanAvailabilityRecord // por PlanID
	divergences   []entity.ProductionDivergence
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		recipes:    make(map[string]entity.Recipe),
		stockItems: make(map[string]entity.StockItem),
		movements:  make(map[string]entity.StockMovement),
		alerts:     make(map[string]entity.StockAlert),
		plans:      make(map[string]entity.ProductionPlan),
		records:    make(map[string]entity.ProductionPlanAvailabilityRecord),
	}
}

// clone copia el estado para una transacción; se descarta si la tx falla.
func (s *state) clone() *state {
	c := &state{
		products:      make(map[string]entity.Product, len(s.products)),
		recipes:       make(map[string]entity.Recipe, len(s.recipes)),
		stockItems:    make(map[string]entity.StockItem, len(s.stockItems)),
		movements:     make(map[string]entity.StockMovement, len(s.movements)),
		movementOrder: append([]string(nil), s.movementOrder...),
		alerts:        make(map[string]entity.StockAlert, len(s.alerts)),
		plans:         make(map[string]entity.ProductionPlan, len(s.plans)),
		records:       make(map[string]entity.ProductionPlanAvailabilityRecord, len(s.records)),
		divergences:   append([]entity.ProductionDivergence(nil), s.divergences...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.recipes {
		c.recipes[k] = v
	}
	for k, v := range s.stockItems {
		c.stockItems[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.alerts {
		c.alerts[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	return c
}

// Store contenedor en memoria. Las transacciones se serializan con mu, así que dos
// ajustes sobre el mismo StockItem nunca pierden un update.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock reemplaza el reloj usado para los timestamps asignados por el store.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// view da acceso al estado: el de la tx si existe, si no el confirmado bajo el lock.
type view struct {
	s  *Store
	tx *state
}

func (v view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	fn(v.s.st)
}

func (v view) write(fn func(st *state, now time.Time) error) error {
	if v.tx != nil {
		return fn(v.tx, v.s.now())
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st, v.s.now())
}

// runTx ejecuta fn sobre una copia del estado y la confirma solo si fn no falla.
func (s *Store) runTx(fn func(tx *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx
	return nil
}

func cloneRecipe(r entity.Recipe) entity.Recipe {
	r.Ingredients = append([]entity.RecipeIngredient(nil), r.Ingredients...)
	return r
}

func cloneRecord(r entity.ProductionPlanAvailabilityRecord) entity.ProductionPlanAvailabilityRecord {
	r.Shortages = append([]entity.IngredientShortage(nil), r.Shortages...)
	return r
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
