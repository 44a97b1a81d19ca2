package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ProductionPlanRepository puerto de planes de producción.
type ProductionPlanRepository interface {
	Create(ctx context.Context, plan *entity.ProductionPlan) error
	GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error)
	// GetForUpdate como GetByID pero bloquea el plan hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error)
	Update(ctx context.Context, plan *entity.ProductionPlan) error
	// List filtra por estado si status no es vacío; excluye archivados salvo includeArchived.
	List(ctx context.Context, status string, includeArchived bool, limit, offset int) ([]*entity.ProductionPlan, error)
}

// AvailabilityRecordRepository puerto de registros de disponibilidad (uno por plan como máximo).
type AvailabilityRecordRepository interface {
	Create(ctx context.Context, record *entity.ProductionPlanAvailabilityRecord) error
	GetByPlanID(ctx context.Context, planID string) (*entity.ProductionPlanAvailabilityRecord, error)
	Update(ctx context.Context, record *entity.ProductionPlanAvailabilityRecord) error
}

// DivergenceRepository puerto de divergencias de producción.
type DivergenceRepository interface {
	Create(ctx context.Context, divergence *entity.ProductionDivergence) error
	ListByPlan(ctx context.Context, planID string) ([]*entity.ProductionDivergence, error)
}
