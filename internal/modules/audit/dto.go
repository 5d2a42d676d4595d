package audit

import "musicportal/internal/domain"

// Entry is what the tracker and ledger hand to Record.
type Entry struct {
	TargetKind domain.TargetKind
	TargetID   int64
	UserID     int64
	UserName   string
	Type       domain.LogType
	Note       string
}

type CreateLogRequest struct {
	TargetKind domain.TargetKind `json:"target_kind" binding:"required"`
	TargetID   int64             `json:"target_id" binding:"required"`
	Type       domain.LogType    `json:"type" binding:"required"`
	Note       string            `json:"note" binding:"required"`
}
