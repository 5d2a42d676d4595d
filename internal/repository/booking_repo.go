package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"musicportal/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// CountHoldingOverlaps counts approved or confirmed bookings on the resource whose
// interval intersects [start, end). Overlap: start1 < end2 AND end1 > start2.
func (r *BookingRepository) CountHoldingOverlaps(ctx context.Context, resourceID int64, start, end time.Time, excludeID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("resource_id = ?", resourceID).
		Where("status IN ?", domain.HoldingBookingStatuses()).
		Where("start_time < ? AND end_time > ?", end, start).
		Where("id <> ?", excludeID).
		Count(&cnt).Error
	if err != nil {
		return 0, translate(err)
	}
	return cnt, nil
}

// CountHoldingOverlapsOutside is CountHoldingOverlaps minus the slot bookings of one window.
func (r *BookingRepository) CountHoldingOverlapsOutside(ctx context.Context, resourceID int64, start, end time.Time, availabilityID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("resource_id = ?", resourceID).
		Where("status IN ?", domain.HoldingBookingStatuses()).
		Where("start_time < ? AND end_time > ?", end, start).
		Where("(availability_id IS NULL OR availability_id <> ?)", availabilityID).
		Count(&cnt).Error
	if err != nil {
		return 0, translate(err)
	}
	return cnt, nil
}

func (r *BookingRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to domain.BookingStatus, decidedBy int64, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"decided_by": decidedBy,
			"decided_at": at,
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

// DeletePending removes a booking that is still awaiting a decision.
func (r *BookingRepository) DeletePending(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Delete(&domain.Booking{})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

func (r *BookingRepository) ListByResource(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("resource_id = ?", resourceID).
		Order("start_time ASC, id ASC")
	if !from.IsZero() {
		q = q.Where("end_time > ?", from)
	}
	if !to.IsZero() {
		q = q.Where("start_time < ?", to)
	}

	var out []domain.Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *BookingRepository) ListByBooker(ctx context.Context, bookerID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("booker_id = ?", bookerID).
		Order("start_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// ListLiveByAvailability returns confirmed bookings of a window that has not ended yet.
func (r *BookingRepository) ListLiveByAvailability(ctx context.Context, availabilityID int64, now time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("availability_id = ? AND status = ? AND end_time > ?", availabilityID, domain.BookingConfirmed, now).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *BookingRepository) HasSlot(ctx context.Context, availabilityID, bookerID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("availability_id = ? AND booker_id = ? AND status = ?", availabilityID, bookerID, domain.BookingConfirmed).
		Count(&cnt).Error
	if err != nil {
		return false, translate(err)
	}
	return cnt > 0, nil
}
