package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/pkg/sanitize"
	"musicportal/internal/repository"
)

const maxNoteLength = 1000

type Service struct {
	db    *gorm.DB
	logs  *repository.EquipmentLogRepository
	names NameResolver
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(db *gorm.DB, names NameResolver, opts ...Option) *Service {
	s := &Service{
		db:    db,
		logs:  repository.NewEquipmentLogRepository(db),
		names: names,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends an entry. When tx is non-nil the entry joins that transaction,
// so it is committed or rolled back together with the state change it describes.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, e Entry) (*domain.EquipmentLog, error) {
	if !e.TargetKind.Valid() || e.TargetID <= 0 {
		return nil, domain.NewValidationError("target", "unknown target")
	}
	if !e.Type.Valid() {
		return nil, domain.NewValidationError("type", "must be usage, damage or maintenance")
	}

	repo := s.logs
	if tx != nil {
		repo = s.logs.WithTx(tx)
	}

	entry := &domain.EquipmentLog{
		TargetKind: e.TargetKind,
		TargetID:   e.TargetID,
		UserID:     e.UserID,
		UserName:   e.UserName,
		Type:       e.Type,
		Note:       sanitize.Text(e.Note, maxNoteLength),
		CreatedAt:  s.now().UTC(),
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}

	s.log.Info("audit event",
		zap.Bool("audit", true),
		zap.String("log_id", entry.ID.String()),
		zap.String("target_kind", string(entry.TargetKind)),
		zap.Int64("target_id", entry.TargetID),
		zap.String("type", string(entry.Type)),
		zap.Int64("user_id", entry.UserID),
		zap.String("note", entry.Note),
	)
	return entry, nil
}

// RecordManual lets staff add damage, maintenance or usage notes by hand.
func (s *Service) RecordManual(ctx context.Context, actor domain.Actor, req CreateLogRequest) (*domain.EquipmentLog, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	if !req.TargetKind.Valid() {
		return nil, domain.NewValidationError("target_kind", "must be resource or equipment")
	}
	if sanitize.Text(req.Note, maxNoteLength) == "" {
		return nil, domain.NewValidationError("note", "required")
	}
	if err := s.ensureTarget(ctx, req.TargetKind, req.TargetID); err != nil {
		return nil, err
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return s.Record(ctx, nil, Entry{
		TargetKind: req.TargetKind,
		TargetID:   req.TargetID,
		UserID:     actor.UserID,
		UserName:   name,
		Type:       req.Type,
		Note:       req.Note,
	})
}

// ListByTarget returns the history of one resource or item, oldest first.
func (s *Service) ListByTarget(ctx context.Context, kind domain.TargetKind, targetID int64) ([]domain.EquipmentLog, error) {
	if !kind.Valid() {
		return nil, domain.NewValidationError("target_kind", "must be resource or equipment")
	}
	if targetID <= 0 {
		return nil, domain.NewValidationError("target_id", "required")
	}
	return s.logs.ListByTarget(ctx, kind, targetID)
}

func (s *Service) ensureTarget(ctx context.Context, kind domain.TargetKind, id int64) error {
	var err error
	switch kind {
	case domain.TargetResource:
		_, err = repository.NewResourceRepository(s.db).GetByID(ctx, id)
	case domain.TargetEquipment:
		_, err = repository.NewEquipmentRepository(s.db).GetByID(ctx, id)
	}
	return err
}

func (s *Service) displayName(ctx context.Context, userID int64) (string, error) {
	if s.names == nil {
		return fmt.Sprintf("user #%d", userID), nil
	}
	return s.names.DisplayName(ctx, userID)
}
