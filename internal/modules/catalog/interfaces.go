package catalog

import (
	"context"

	"musicportal/internal/domain"
)

// Cache is the read-through store in front of catalog lookups.
type Cache interface {
	GetResource(ctx context.Context, id int64) (*domain.Resource, bool)
	SetResource(ctx context.Context, r *domain.Resource)
	InvalidateResource(ctx context.Context, id int64)
	GetEquipment(ctx context.Context, id int64) (*domain.Equipment, bool)
	SetEquipment(ctx context.Context, e *domain.Equipment)
	InvalidateEquipment(ctx context.Context, id int64)
}
