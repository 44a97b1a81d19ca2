// Package cache decoradores con caché LRU para lecturas frecuentes.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository cachea GetByID del maestro de productos. El resolvedor y la
// verificación de disponibilidad consultan el mismo producto muchas veces por receta.
// Los productos inexistentes no se cachean.
type ProductRepository struct {
	next repository.ProductRepository
	lru  *expirable.LRU[string, entity.Product]
}

// NewProductRepository envuelve next con un LRU de size entradas que expiran tras ttl.
func NewProductRepository(next repository.ProductRepository, size int, ttl time.Duration) *ProductRepository {
	if size <= 0 {
		size = 1024
	}
	return &ProductRepository{
		next: next,
		lru:  expirable.NewLRU[string, entity.Product](size, nil, ttl),
	}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := r.lru.Get(id); ok {
		return &p, nil
	}
	p, err := r.next.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	r.lru.Add(id, *p)
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	r.lru.Remove(product.ID)
	return nil
}

// Len entradas vigentes.
func (r *ProductRepository) Len() int {
	return r.lru.Len()
}
