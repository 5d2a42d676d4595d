package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
	"musicportal/internal/repository"
)

const defaultLoanPeriod = 7 * 24 * time.Hour

type Service struct {
	db         *gorm.DB
	equipment  *repository.EquipmentRepository
	loans      *repository.LoanRepository
	audit      AuditRecorder
	names      NameResolver
	cache      EquipmentCache
	log        *zap.Logger
	now        func() time.Time
	loanPeriod time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLoanPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loanPeriod = d
		}
	}
}

func WithCache(c EquipmentCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(db *gorm.DB, auditRecorder AuditRecorder, names NameResolver, opts ...Option) *Service {
	s := &Service{
		db:         db,
		equipment:  repository.NewEquipmentRepository(db),
		loans:      repository.NewLoanRepository(db),
		audit:      auditRecorder,
		names:      names,
		log:        zap.NewNop(),
		now:        time.Now,
		loanPeriod: defaultLoanPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestLoan reserves qty units and records a pending loan in one transaction.
// The decrement is a conditional write, so concurrent requests can never
// take more than what is available.
func (s *Service) RequestLoan(ctx context.Context, actor domain.Actor, equipmentID int64, req RequestLoanRequest) (*LoanResponse, error) {
	now := domain.NormalizeTime(s.now())
	if req.Qty <= 0 {
		return nil, domain.NewValidationError("qty", "must be a positive integer")
	}
	returnDate := now.Add(s.loanPeriod)
	if req.ReturnDate != nil {
		returnDate = domain.NormalizeTime(*req.ReturnDate)
	}
	if !returnDate.After(now) {
		return nil, domain.NewValidationError("return_date", "must be in the future")
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		EquipmentID: equipmentID,
		UserID:      actor.UserID,
		UserName:    name,
		Qty:         req.Qty,
		RequestDate: now,
		ReturnDate:  returnDate,
		Status:      domain.LoanPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		equipment := s.equipment.WithTx(tx)

		reserved, err := equipment.TryReserve(ctx, equipmentID, req.Qty)
		if err != nil {
			return err
		}
		if !reserved {
			item, err := equipment.GetByID(ctx, equipmentID)
			if err != nil {
				return err
			}
			if !item.IsActive {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, req.Qty, item.AvailableQty)
		}

		return s.loans.WithTx(tx).Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, equipmentID)
	s.log.Info("loan requested",
		zap.Int64("loan_id", loan.ID),
		zap.Int64("equipment_id", equipmentID),
		zap.Int64("user_id", actor.UserID),
		zap.Int("qty", loan.Qty),
	)

	resp := toLoanResponse(*loan, now)
	return &resp, nil
}

// SetLoanStatus applies a staff decision or a return. The status change is a
// compare-and-set on the stored status, so the quantity of a loan is released
// at most once even if the same call is retried.
func (s *Service) SetLoanStatus(ctx context.Context, actor domain.Actor, loanID int64, to domain.LoanStatus) (*LoanResponse, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("status", "must be one of pending, active, rejected, returned")
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	now := domain.NormalizeTime(s.now())

	var loan *domain.Loan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loans.WithTx(tx)

		current, err := loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionLoan(current.Status, to) {
			return fmt.Errorf("%w: loan %d is %s, cannot become %s",
				domain.ErrInvalidTransition, loanID, domain.EffectiveLoanStatus(*current, now), to)
		}

		applied, err := loans.CompareAndSetStatus(ctx, loanID, current.Status, to, actor.UserID, now)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: loan %d changed concurrently", domain.ErrInvalidTransition, loanID)
		}

		if to.Releases() && current.Status.HoldsQuantity() {
			released, err := s.equipment.WithTx(tx).Release(ctx, current.EquipmentID, current.Qty)
			if err != nil {
				return err
			}
			if !released {
				return fmt.Errorf("%w: releasing %d units of equipment %d", domain.ErrCapacityViolation, current.Qty, current.EquipmentID)
			}
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			TargetKind: domain.TargetEquipment,
			TargetID:   current.EquipmentID,
			UserID:     actor.UserID,
			UserName:   name,
			Type:       domain.LogUsage,
			Note:       loanNote(*current, to),
		}); err != nil {
			return err
		}

		loan, err = loans.GetByID(ctx, loanID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if to.Releases() {
		s.invalidate(ctx, loan.EquipmentID)
	}
	s.log.Info("loan status changed",
		zap.Int64("loan_id", loanID),
		zap.String("status", string(to)),
		zap.Int64("by", actor.UserID),
	)

	resp := toLoanResponse(*loan, now)
	return &resp, nil
}

// AdjustCatalogQuantity resizes the declared total and shifts the available pool by the same delta.
func (s *Service) AdjustCatalogQuantity(ctx context.Context, actor domain.Actor, equipmentID int64, newTotal int) (*domain.Equipment, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	if newTotal < 0 {
		return nil, domain.NewValidationError("total_qty", "must not be negative")
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	var item *domain.Equipment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		equipment := s.equipment.WithTx(tx)

		before, err := equipment.GetForUpdate(ctx, equipmentID)
		if err != nil {
			return err
		}

		resized, err := equipment.Resize(ctx, equipmentID, newTotal)
		if err != nil {
			return err
		}
		if !resized {
			return fmt.Errorf("%w: %d units on loan exceed new total %d", domain.ErrCapacityViolation, before.OnLoan(), newTotal)
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			TargetKind: domain.TargetEquipment,
			TargetID:   equipmentID,
			UserID:     actor.UserID,
			UserName:   name,
			Type:       domain.LogMaintenance,
			Note:       fmt.Sprintf("Quantity adjusted from %d to %d", before.TotalQty, newTotal),
		}); err != nil {
			return err
		}

		item, err = equipment.GetByID(ctx, equipmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, equipmentID)
	s.log.Info("equipment quantity adjusted",
		zap.Int64("equipment_id", equipmentID),
		zap.Int("total_qty", item.TotalQty),
		zap.Int("available_qty", item.AvailableQty),
		zap.Int64("by", actor.UserID),
	)
	return item, nil
}

// GetLoan returns a loan to its borrower or to staff.
func (s *Service) GetLoan(ctx context.Context, actor domain.Actor, loanID int64) (*LoanResponse, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && loan.UserID != actor.UserID {
		// Other users' loans are reported as missing.
		return nil, domain.ErrNotFound
	}

	resp := toLoanResponse(*loan, domain.NormalizeTime(s.now()))
	return &resp, nil
}

// ListLoans filters loans; students only ever see their own.
func (s *Service) ListLoans(ctx context.Context, actor domain.Actor, f repository.LoanFilter) ([]LoanResponse, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown loan status")
	}
	if !actor.IsStaff() {
		f.UserID = actor.UserID
	}
	now := domain.NormalizeTime(s.now())
	f.Now = now

	loans, err := s.loans.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l, now))
	}
	return out, nil
}

func (s *Service) displayName(ctx context.Context, userID int64) (string, error) {
	if s.names == nil {
		return fmt.Sprintf("user #%d", userID), nil
	}
	name, err := s.names.DisplayName(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if name == "" {
		name = fmt.Sprintf("user #%d", userID)
	}
	return name, nil
}

func (s *Service) invalidate(ctx context.Context, equipmentID int64) {
	if s.cache != nil {
		s.cache.InvalidateEquipment(ctx, equipmentID)
	}
}

func loanNote(l domain.Loan, to domain.LoanStatus) string {
	switch to {
	case domain.LoanActive:
		return fmt.Sprintf("Checked out %dx to %s", l.Qty, l.UserName)
	case domain.LoanRejected:
		return fmt.Sprintf("Rejected loan of %dx for %s", l.Qty, l.UserName)
	case domain.LoanReturned:
		return fmt.Sprintf("Returned %dx by %s", l.Qty, l.UserName)
	}
	return fmt.Sprintf("Loan of %dx for %s is now %s", l.Qty, l.UserName, to)
}
