package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicportal/internal/domain"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) WithTx(tx *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: tx}
}

type EquipmentFilter struct {
	Category        string
	IncludeInactive bool
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Equipment, error) {
	var e domain.Equipment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) UpdateDetails(ctx context.Context, e *domain.Equipment) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"name":     e.Name,
			"category": e.Category,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
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

func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilter) ([]domain.Equipment, error) {
	q := r.db.WithContext(ctx).Model(&domain.Equipment{}).Order("name ASC, id ASC")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}

	var out []domain.Equipment
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// TryReserve takes qty units from the pool in a single conditional write.
// It returns false when the item is missing, inactive or short on stock.
func (r *EquipmentRepository) TryReserve(ctx context.Context, id int64, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ? AND is_active = ? AND available_qty >= ?", id, true, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty - ?", qty),
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

// Release gives qty units back. The guard keeps available_qty within total_qty.
func (r *EquipmentRepository) Release(ctx context.Context, id int64, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ? AND available_qty + ? <= total_qty", id, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + ?", qty),
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

// Resize sets a new total and shifts available_qty by the same delta, refusing
// any change that would leave outstanding loans above the new total.
func (r *EquipmentRepository) Resize(ctx context.Context, id int64, newTotal int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ? AND available_qty + (? - total_qty) >= 0", id, newTotal).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + (? - total_qty)", newTotal),
			"total_qty":     newTotal,
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}
