package repository

import (
	"context"

	"gorm.io/gorm"

	"musicportal/internal/domain"
)

// EquipmentLogRepository is append-only: there is no update or delete.
type EquipmentLogRepository struct {
	db *gorm.DB
}

func NewEquipmentLogRepository(db *gorm.DB) *EquipmentLogRepository {
	return &EquipmentLogRepository{db: db}
}

func (r *EquipmentLogRepository) WithTx(tx *gorm.DB) *EquipmentLogRepository {
	return &EquipmentLogRepository{db: tx}
}

func (r *EquipmentLogRepository) Create(ctx context.Context, l *domain.EquipmentLog) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *EquipmentLogRepository) ListByTarget(ctx context.Context, kind domain.TargetKind, targetID int64) ([]domain.EquipmentLog, error) {
	var out []domain.EquipmentLog
	err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
