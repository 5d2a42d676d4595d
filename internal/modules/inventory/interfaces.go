package inventory

import (
	"context"

	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
)

// AuditRecorder appends history entries inside the caller's transaction.
type AuditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, e audit.Entry) (*domain.EquipmentLog, error)
}

type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// EquipmentCache is invalidated whenever available or total quantities change.
type EquipmentCache interface {
	InvalidateEquipment(ctx context.Context, id int64)
}
