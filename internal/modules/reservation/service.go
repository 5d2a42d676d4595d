package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
	"musicportal/internal/pkg/sanitize"
	"musicportal/internal/pkg/validator"
	"musicportal/internal/repository"
)

const maxPurposeLength = 500

type Service struct {
	db           *gorm.DB
	resources    *repository.ResourceRepository
	bookings     *repository.BookingRepository
	availability *repository.AvailabilityRepository
	audit        AuditRecorder
	names        NameResolver
	log          *zap.Logger
	now          func() time.Time
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

func NewService(db *gorm.DB, auditRecorder AuditRecorder, names NameResolver, opts ...Option) *Service {
	s := &Service{
		db:           db,
		resources:    repository.NewResourceRepository(db),
		bookings:     repository.NewBookingRepository(db),
		availability: repository.NewAvailabilityRepository(db),
		audit:        auditRecorder,
		names:        names,
		log:          zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/* ---------- BOOKING REQUESTS ---------- */

// RequestBooking records a pending request. Overlapping pending requests are
// allowed; conflicts are settled when staff approve.
func (s *Service) RequestBooking(ctx context.Context, actor domain.Actor, resourceID int64, req CreateBookingRequest) (*domain.Booking, error) {
	interval, err := normalizeInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !res.IsActive {
		return nil, domain.ErrNotFound
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ResourceID: resourceID,
		BookerID:   actor.UserID,
		BookerName: name,
		StartTime:  interval.Start,
		EndTime:    interval.End,
		Purpose:    sanitize.Text(req.Purpose, maxPurposeLength),
		Status:     domain.BookingPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("booking requested",
		zap.Int64("booking_id", b.ID),
		zap.Int64("resource_id", resourceID),
		zap.Int64("booker_id", actor.UserID),
	)
	return b, nil
}

// SetBookingStatus approves, rejects or cancels a booking. Approval locks the
// resource row so approvals on one resource are serialized, then refuses any
// interval that overlaps an approved or confirmed booking.
func (s *Service) SetBookingStatus(ctx context.Context, actor domain.Actor, bookingID int64, to domain.BookingStatus) (*domain.Booking, error) {
	if !to.Valid() {
		return nil, domain.NewValidationError("status", "must be approved, rejected or cancelled")
	}

	existing, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch to {
	case domain.BookingApproved, domain.BookingRejected:
		if !actor.IsStaff() {
			return nil, domain.ErrUnauthorized
		}
	case domain.BookingCancelled:
		if !actor.IsStaff() && existing.BookerID != actor.UserID {
			return nil, domain.ErrUnauthorized
		}
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	now := domain.NormalizeTime(s.now())

	var booking *domain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)

		if _, err := s.resources.WithTx(tx).GetForUpdate(ctx, existing.ResourceID); err != nil {
			return err
		}

		current, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionBooking(current.Status, to) {
			return fmt.Errorf("%w: booking %d is %s, cannot become %s", domain.ErrInvalidTransition, bookingID, current.Status, to)
		}

		if to == domain.BookingApproved {
			overlaps, err := bookings.CountHoldingOverlaps(ctx, current.ResourceID, current.StartTime, current.EndTime, current.ID)
			if err != nil {
				return err
			}
			if overlaps > 0 {
				return fmt.Errorf("%w: %d booking(s) already hold %s", domain.ErrResourceConflict, overlaps, formatInterval(current.Interval()))
			}
		}

		applied, err := bookings.CompareAndSetStatus(ctx, bookingID, current.Status, to, actor.UserID, now)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: booking %d changed concurrently", domain.ErrInvalidTransition, bookingID)
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			TargetKind: domain.TargetResource,
			TargetID:   current.ResourceID,
			UserID:     actor.UserID,
			UserName:   name,
			Type:       domain.LogUsage,
			Note:       bookingNote(*current, to),
		}); err != nil {
			return err
		}

		booking, err = bookings.GetByID(ctx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking status changed",
		zap.Int64("booking_id", bookingID),
		zap.String("status", string(to)),
		zap.Int64("by", actor.UserID),
	)
	return booking, nil
}

// WithdrawBooking deletes the caller's own request while it is still pending.
func (s *Service) WithdrawBooking(ctx context.Context, actor domain.Actor, bookingID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.BookerID != actor.UserID {
		return domain.ErrUnauthorized
	}

	deleted, err := s.bookings.DeletePending(ctx, bookingID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: only pending bookings can be withdrawn", domain.ErrInvalidTransition)
	}

	s.log.Info("booking withdrawn", zap.Int64("booking_id", bookingID), zap.Int64("booker_id", actor.UserID))
	return nil
}

// GetBooking returns a booking to its booker or to staff.
func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && b.BookerID != actor.UserID {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ListResourceBookings returns the resource calendar between from and to (either may be zero).
func (s *Service) ListResourceBookings(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.Booking, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.bookings.ListByResource(ctx, resourceID, normalizeBound(from), normalizeBound(to))
}

func (s *Service) ListMyBookings(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByBooker(ctx, actor.UserID, limit, offset)
}

/* ---------- AVAILABILITY WINDOWS ---------- */

// PublishAvailability opens a window that students can claim slots in without approval.
func (s *Service) PublishAvailability(ctx context.Context, actor domain.Actor, resourceID int64, req PublishAvailabilityRequest) (*AvailabilityResponse, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	interval, err := normalizeInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if !interval.End.After(domain.NormalizeTime(s.now())) {
		return nil, domain.NewValidationError("end_time", "must be in the future")
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	window := &domain.Availability{
		ResourceID:    resourceID,
		PublisherID:   actor.UserID,
		PublisherName: name,
		StartTime:     interval.Start,
		EndTime:       interval.End,
		MaxSlots:      req.MaxSlots,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.resources.WithTx(tx).GetActiveForUpdate(ctx, resourceID); err != nil {
			return err
		}

		windows := s.availability.WithTx(tx)

		overlaps, err := s.bookings.WithTx(tx).CountHoldingOverlaps(ctx, resourceID, interval.Start, interval.End, 0)
		if err != nil {
			return err
		}
		if overlaps > 0 {
			return fmt.Errorf("%w: %s overlaps %d approved or confirmed booking(s)", domain.ErrResourceConflict, formatInterval(interval), overlaps)
		}

		clashing, err := windows.CountOverlaps(ctx, resourceID, interval.Start, interval.End)
		if err != nil {
			return err
		}
		if clashing > 0 {
			return fmt.Errorf("%w: %s overlaps %d published window(s)", domain.ErrResourceConflict, formatInterval(interval), clashing)
		}

		return windows.Create(ctx, window)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("availability published",
		zap.Int64("availability_id", window.ID),
		zap.Int64("resource_id", resourceID),
		zap.Int("max_slots", window.MaxSlots),
		zap.Int64("by", actor.UserID),
	)
	resp := toAvailabilityResponse(*window)
	return &resp, nil
}

func (s *Service) ListAvailability(ctx context.Context, resourceID int64, from, to time.Time) ([]AvailabilityResponse, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}

	windows, err := s.availability.ListByResource(ctx, resourceID, normalizeBound(from), normalizeBound(to))
	if err != nil {
		return nil, err
	}

	out := make([]AvailabilityResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, toAvailabilityResponse(w))
	}
	return out, nil
}

// BookAvailabilitySlot claims one slot of a window and records a confirmed booking
// in the same transaction. The slot counter only moves through a conditional
// increment, so a window never hands out more than MaxSlots.
func (s *Service) BookAvailabilitySlot(ctx context.Context, actor domain.Actor, availabilityID int64, req BookSlotRequest) (*domain.Booking, error) {
	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	now := domain.NormalizeTime(s.now())

	var booking *domain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		windows := s.availability.WithTx(tx)
		bookings := s.bookings.WithTx(tx)

		window, err := windows.GetByID(ctx, availabilityID)
		if err != nil {
			return err
		}
		if !window.StartTime.After(now) {
			return domain.NewValidationError("availability", "window has already started")
		}
		if _, err := s.resources.WithTx(tx).GetActiveForUpdate(ctx, window.ResourceID); err != nil {
			return err
		}

		held, err := bookings.HasSlot(ctx, availabilityID, actor.UserID)
		if err != nil {
			return err
		}
		if held {
			return fmt.Errorf("%w: already holding a slot in availability %d", domain.ErrResourceConflict, availabilityID)
		}

		// Slots of one window share its interval; anything else holding the resource conflicts.
		overlaps, err := bookings.CountHoldingOverlapsOutside(ctx, window.ResourceID, window.StartTime, window.EndTime, availabilityID)
		if err != nil {
			return err
		}
		if overlaps > 0 {
			return fmt.Errorf("%w: window overlaps %d approved or confirmed booking(s)", domain.ErrResourceConflict, overlaps)
		}

		claimed, err := windows.ClaimSlot(ctx, availabilityID)
		if err != nil {
			return err
		}
		if !claimed {
			return unclaimedSlot(ctx, windows, availabilityID)
		}

		windowID := window.ID
		booking = &domain.Booking{
			ResourceID:     window.ResourceID,
			AvailabilityID: &windowID,
			BookerID:       actor.UserID,
			BookerName:     name,
			StartTime:      window.StartTime,
			EndTime:        window.EndTime,
			Purpose:        sanitize.Text(req.Purpose, maxPurposeLength),
			Status:         domain.BookingConfirmed,
			DecidedAt:      &now,
		}
		return bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("availability slot booked",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("availability_id", availabilityID),
		zap.Int64("booker_id", actor.UserID),
	)
	return booking, nil
}

// unclaimedSlot tells a full window apart from one deleted since it was read.
func unclaimedSlot(ctx context.Context, windows *repository.AvailabilityRepository, availabilityID int64) error {
	current, err := windows.GetByID(ctx, availabilityID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: all %d slots of availability %d are taken", domain.ErrSlotFull, current.MaxSlots, availabilityID)
}

// DeleteAvailability removes a window. Windows with confirmed bookings that have
// not ended yet are kept unless cascade is set, in which case those bookings are
// cancelled in the same transaction.
func (s *Service) DeleteAvailability(ctx context.Context, actor domain.Actor, availabilityID int64, cascade bool) (int, error) {
	if !actor.IsStaff() {
		return 0, domain.ErrUnauthorized
	}

	name, err := s.displayName(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	now := domain.NormalizeTime(s.now())

	cancelled := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		windows := s.availability.WithTx(tx)
		bookings := s.bookings.WithTx(tx)

		window, err := windows.GetForUpdate(ctx, availabilityID)
		if err != nil {
			return err
		}

		live, err := bookings.ListLiveByAvailability(ctx, availabilityID, now)
		if err != nil {
			return err
		}
		if len(live) > 0 && !cascade {
			return fmt.Errorf("%w: %d live booking(s) in availability %d", domain.ErrHasActiveBookings, len(live), availabilityID)
		}

		for _, b := range live {
			applied, err := bookings.CompareAndSetStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCancelled, actor.UserID, now)
			if err != nil {
				return err
			}
			if !applied {
				continue
			}
			cancelled++

			if _, err := s.audit.Record(ctx, tx, audit.Entry{
				TargetKind: domain.TargetResource,
				TargetID:   window.ResourceID,
				UserID:     actor.UserID,
				UserName:   name,
				Type:       domain.LogUsage,
				Note:       fmt.Sprintf("Cancelled slot booking #%d for %s: availability %s removed", b.ID, b.BookerName, formatInterval(window.Interval())),
			}); err != nil {
				return err
			}
		}

		return windows.Delete(ctx, availabilityID)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("availability deleted",
		zap.Int64("availability_id", availabilityID),
		zap.Int("cancelled_bookings", cancelled),
		zap.Int64("by", actor.UserID),
	)
	return cancelled, nil
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

func normalizeInterval(start, end time.Time) (domain.Interval, error) {
	if start.IsZero() || end.IsZero() {
		return domain.Interval{}, missingTimes(start.IsZero(), end.IsZero())
	}
	i := domain.Interval{Start: domain.NormalizeTime(start), End: domain.NormalizeTime(end)}
	if !i.Valid() {
		return domain.Interval{}, invalidRange()
	}
	return i, nil
}

func normalizeBound(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return domain.NormalizeTime(t)
}

func formatInterval(i domain.Interval) string {
	return i.Start.Format("2006-01-02 15:04") + "-" + i.End.Format("15:04")
}

func bookingNote(b domain.Booking, to domain.BookingStatus) string {
	verb := map[domain.BookingStatus]string{
		domain.BookingApproved:  "Approved",
		domain.BookingRejected:  "Rejected",
		domain.BookingCancelled: "Cancelled",
	}[to]
	return fmt.Sprintf("%s booking #%d for %s, %s", verb, b.ID, b.BookerName, formatInterval(b.Interval()))
}
