package reservation

import (
	"context"

	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
)

type AuditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, e audit.Entry) (*domain.EquipmentLog, error)
}

type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}
