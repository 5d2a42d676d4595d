package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicportal/internal/domain"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *ResourceRepository) WithTx(tx *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: tx}
}

type ResourceFilter struct {
	Kind            domain.ResourceKind
	IncludeInactive bool
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	return translate(r.db.WithContext(ctx).Create(res).Error)
}

func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	var res domain.Resource
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// GetActiveForUpdate locks the resource row for the rest of the transaction.
// Inactive resources are reported as not found.
func (r *ResourceRepository) GetActiveForUpdate(ctx context.Context, id int64) (*domain.Resource, error) {
	var res domain.Resource
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&res).Error
	if err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// GetForUpdate locks the resource row regardless of its active flag.
func (r *ResourceRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Resource, error) {
	var res domain.Resource
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *ResourceRepository) UpdateDetails(ctx context.Context, res *domain.Resource) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"kind":        res.Kind,
			"name":        res.Name,
			"description": res.Description,
			"location":    res.Location,
			"capacity":    res.Capacity,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("id = ?", id).
		Update("is_active", active)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) List(ctx context.Context, f ResourceFilter) ([]domain.Resource, error) {
	q := r.db.WithContext(ctx).Model(&domain.Resource{}).Order("name ASC, id ASC")
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}

	var out []domain.Resource
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}
