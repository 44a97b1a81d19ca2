package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	products map[string]*entity.Product
	calls    int
}

func (r *countingRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.calls++
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *countingRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func TestProductRepository_SegundaLecturaDesdeCache(t *testing.T) {
	next := &countingRepo{products: map[string]*entity.Product{"p1": {ID: "p1", Name: "Leche", TrackInventory: true}}}
	repo := NewProductRepository(next, 10, time.Minute)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Leche", p.Name)

	p.Name = "mutado"
	again, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Leche", again.Name)
	assert.Equal(t, 1, next.calls)
}

func TestProductRepository_InexistenteNoSeCachea(t *testing.T) {
	next := &countingRepo{products: map[string]*entity.Product{}}
	repo := NewProductRepository(next, 10, time.Minute)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "nope", Name: "Azúcar"}))

	p, err = repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Azúcar", p.Name)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 1, repo.Len())
}

func TestProductRepository_Expira(t *testing.T) {
	next := &countingRepo{products: map[string]*entity.Product{"p1": {ID: "p1"}}}
	repo := NewProductRepository(next, 10, 20*time.Millisecond)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
