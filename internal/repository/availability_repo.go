package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicportal/internal/domain"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) WithTx(tx *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: tx}
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *domain.Availability) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*domain.Availability, error) {
	var a domain.Availability
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AvailabilityRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Availability, error) {
	var a domain.Availability
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// CountOverlaps counts windows on the resource intersecting [start, end).
func (r *AvailabilityRepository) CountOverlaps(ctx context.Context, resourceID int64, start, end time.Time) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Availability{}).
		Where("resource_id = ?", resourceID).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&cnt).Error
	if err != nil {
		return 0, translate(err)
	}
	return cnt, nil
}

// ClaimSlot consumes one slot if any remain. False means the window is full or gone.
func (r *AvailabilityRepository) ClaimSlot(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Availability{}).
		Where("id = ? AND booked_slots < max_slots", id).
		Updates(map[string]any{
			"booked_slots": gorm.Expr("booked_slots + 1"),
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Availability{}, id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepository) ListByResource(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.Availability, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Availability{}).
		Where("resource_id = ?", resourceID).
		Order("start_time ASC, id ASC")
	if !from.IsZero() {
		q = q.Where("end_time > ?", from)
	}
	if !to.IsZero() {
		q = q.Where("start_time < ?", to)
	}

	var out []domain.Availability
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}
