package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogType string

const (
	LogUsage       LogType = "usage"
	LogDamage      LogType = "damage"
	LogMaintenance LogType = "maintenance"
)

func (t LogType) Valid() bool {
	switch t {
	case LogUsage, LogDamage, LogMaintenance:
		return true
	}
	return false
}

type TargetKind string

const (
	TargetResource  TargetKind = "resource"
	TargetEquipment TargetKind = "equipment"
)

func (k TargetKind) Valid() bool {
	return k == TargetResource || k == TargetEquipment
}

// EquipmentLog is an append-only audit entry attached to a resource or an equipment item.
type EquipmentLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TargetKind TargetKind `json:"target_kind" gorm:"type:varchar(16);not null;index:idx_equipment_logs_target,priority:1"`
	TargetID   int64      `json:"target_id" gorm:"not null;index:idx_equipment_logs_target,priority:2"`
	UserID     int64      `json:"user_id" gorm:"not null"`
	UserName   string     `json:"user_name"`
	Type       LogType    `json:"type" gorm:"type:varchar(16);not null;check:chk_equipment_logs_type,type IN ('usage','damage','maintenance')"`
	Note       string     `json:"note" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index:idx_equipment_logs_target,priority:3"`
}

func (EquipmentLog) TableName() string { return "equipment_logs" }

func (l *EquipmentLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
