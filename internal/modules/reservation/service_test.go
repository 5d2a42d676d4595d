package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
	"musicportal/internal/modules/catalog"
	"musicportal/internal/repository"
	"musicportal/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	audit  *audit.Service
	clock  *testutil.Clock
	staff  domain.Actor
	alice  domain.Actor
	bob    domain.Actor
	studio *domain.Resource
	booth  *domain.Resource
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Time{})
	names := repository.NewUserRepository(db)
	auditSvc := audit.NewService(db, names, audit.WithClock(clock.Now))

	return &fixture{
		db:     db,
		svc:    NewService(db, auditSvc, names, WithClock(clock.Now)),
		audit:  auditSvc,
		clock:  clock,
		staff:  testutil.CreateUser(t, db, 1, "Ms. Aigerim", domain.RoleTeacher),
		alice:  testutil.CreateUser(t, db, 2, "Alice", domain.RoleStudent),
		bob:    testutil.CreateUser(t, db, 3, "Bob", domain.RoleStudent),
		studio: testutil.CreateResource(t, db, domain.ResourceStudio, "Studio A"),
		booth:  testutil.CreateResource(t, db, domain.ResourceBooth, "ERC Booth 2"),
	}
}

// tomorrow returns hh:mm on the day after the reference time.
func tomorrow(hour, minute int) time.Time {
	d := testutil.ReferenceTime().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func (f *fixture) book(t *testing.T, actor domain.Actor, start, end time.Time) *domain.Booking {
	t.Helper()
	b, err := f.svc.RequestBooking(context.Background(), actor, f.studio.ID, CreateBookingRequest{
		StartTime: start,
		EndTime:   end,
		Purpose:   "Ensemble rehearsal",
	})
	if err != nil {
		t.Fatalf("RequestBooking returned error: %v", err)
	}
	return b
}

func (f *fixture) publish(t *testing.T, start, end time.Time, slots int) *AvailabilityResponse {
	t.Helper()
	w, err := f.svc.PublishAvailability(context.Background(), f.staff, f.booth.ID, PublishAvailabilityRequest{
		StartTime: start,
		EndTime:   end,
		MaxSlots:  slots,
	})
	if err != nil {
		t.Fatalf("PublishAvailability returned error: %v", err)
	}
	return w
}

func TestRequestBooking_InvalidRange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.RequestBooking(ctx, f.alice, f.studio.ID, CreateBookingRequest{StartTime: tomorrow(11, 0), EndTime: tomorrow(10, 0)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = f.svc.RequestBooking(ctx, f.alice, f.studio.ID, CreateBookingRequest{StartTime: tomorrow(10, 0), EndTime: tomorrow(10, 0)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty interval, got %v", err)
	}

	_, err = f.svc.RequestBooking(ctx, f.alice, f.studio.ID, CreateBookingRequest{EndTime: tomorrow(10, 0)})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["start_time"] == "" {
		t.Fatalf("expected start_time to be reported, got %v", err)
	}
}

func TestRequestBooking_UnknownOrInactiveResource(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := CreateBookingRequest{StartTime: tomorrow(10, 0), EndTime: tomorrow(11, 0)}

	if _, err := f.svc.RequestBooking(ctx, f.alice, 999, req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repository.NewResourceRepository(f.db).SetActive(ctx, f.studio.ID, false); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if _, err := f.svc.RequestBooking(ctx, f.alice, f.studio.ID, req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive resource, got %v", err)
	}
}

func TestApprove_OverlapConflictAndAdjacentSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.book(t, f.alice, tomorrow(10, 0), tomorrow(11, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, first.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve first: %v", err)
	}

	overlapping := f.book(t, f.bob, tomorrow(10, 30), tomorrow(11, 30))
	if overlapping.Status != domain.BookingPending {
		t.Fatalf("expected overlapping request to be created pending, got %s", overlapping.Status)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, overlapping.ID, domain.BookingApproved); !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("expected ErrResourceConflict, got %v", err)
	}

	adjacent := f.book(t, f.bob, tomorrow(11, 0), tomorrow(12, 0))
	approved, err := f.svc.SetBookingStatus(ctx, f.staff, adjacent.ID, domain.BookingApproved)
	if err != nil {
		t.Fatalf("approve adjacent: %v", err)
	}
	if approved.Status != domain.BookingApproved || approved.DecidedBy == nil || *approved.DecidedBy != f.staff.UserID {
		t.Fatalf("unexpected approved booking: %+v", approved)
	}

	stillPending, err := f.svc.GetBooking(ctx, f.staff, overlapping.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if stillPending.Status != domain.BookingPending {
		t.Fatalf("conflicting booking must stay pending, got %s", stillPending.Status)
	}

	logs, err := f.audit.ListByTarget(ctx, domain.TargetResource, f.studio.ID)
	if err != nil {
		t.Fatalf("ListByTarget: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(logs))
	}
	if logs[0].Note != fmt.Sprintf("Approved booking #%d for Alice, 2026-11-03 10:00-11:00", first.ID) {
		t.Fatalf("unexpected note: %q", logs[0].Note)
	}
}

func TestApprove_ConcurrentOverlappingOnlyOneWins(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const requests = 6
	ids := make([]int64, 0, requests)
	for i := 0; i < requests; i++ {
		b := f.book(t, f.alice, tomorrow(14, i*5), tomorrow(15, i*5))
		ids = append(ids, b.ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.svc.SetBookingStatus(ctx, f.staff, id, domain.BookingApproved)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, domain.ErrResourceConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	if approved != 1 {
		t.Fatalf("expected exactly one approval, got %d", approved)
	}
}

func TestSetBookingStatus_Permissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.book(t, f.alice, tomorrow(9, 0), tomorrow(10, 0))

	if _, err := f.svc.SetBookingStatus(ctx, f.alice, b.ID, domain.BookingApproved); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("student approve: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.bob, b.ID, domain.BookingCancelled); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("other student cancel: expected ErrUnauthorized, got %v", err)
	}

	cancelled, err := f.svc.SetBookingStatus(ctx, f.alice, b.ID, domain.BookingCancelled)
	if err != nil {
		t.Fatalf("booker cancel: %v", err)
	}
	if cancelled.Status != domain.BookingCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestSetBookingStatus_StateMachine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	b := f.book(t, f.alice, tomorrow(9, 0), tomorrow(10, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, b.ID, domain.BookingRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, b.ID, domain.BookingApproved); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("approve rejected: expected ErrInvalidTransition, got %v", err)
	}

	a := f.book(t, f.alice, tomorrow(12, 0), tomorrow(13, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, a.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, a.ID, domain.BookingRejected); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("reject approved: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, a.ID, domain.BookingCancelled); err != nil {
		t.Fatalf("cancel approved: %v", err)
	}

	if _, err := f.svc.SetBookingStatus(ctx, f.staff, a.ID, domain.BookingStatus("archived")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown status: expected validation error, got %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, 999, domain.BookingApproved); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown booking: expected ErrNotFound, got %v", err)
	}
}

func TestCancelledApprovalFreesInterval(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.book(t, f.alice, tomorrow(10, 0), tomorrow(11, 0))
	b := f.book(t, f.bob, tomorrow(10, 0), tomorrow(11, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, a.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.alice, a.ID, domain.BookingCancelled); err != nil {
		t.Fatalf("cancel a: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, b.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve b after cancel: %v", err)
	}
}

func TestWithdrawBooking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	b := f.book(t, f.alice, tomorrow(9, 0), tomorrow(10, 0))
	if err := f.svc.WithdrawBooking(ctx, f.bob, b.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := f.svc.WithdrawBooking(ctx, f.alice, b.ID); err != nil {
		t.Fatalf("WithdrawBooking: %v", err)
	}
	if _, err := f.svc.GetBooking(ctx, f.staff, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected booking to be gone, got %v", err)
	}

	approved := f.book(t, f.alice, tomorrow(12, 0), tomorrow(13, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, approved.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.svc.WithdrawBooking(ctx, f.alice, approved.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBookAvailabilitySlot_ThirdStudentGetsSlotFull(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	carol := testutil.CreateUser(t, f.db, 4, "Carol", domain.RoleStudent)

	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 2)
	if w.RemainingSlots != 2 {
		t.Fatalf("expected 2 remaining slots, got %d", w.RemainingSlots)
	}

	for _, student := range []domain.Actor{f.alice, f.bob} {
		b, err := f.svc.BookAvailabilitySlot(ctx, student, w.ID, BookSlotRequest{Purpose: "Piano practice"})
		if err != nil {
			t.Fatalf("BookAvailabilitySlot(%d): %v", student.UserID, err)
		}
		if b.Status != domain.BookingConfirmed || b.ResourceID != f.booth.ID || b.AvailabilityID == nil || *b.AvailabilityID != w.ID {
			t.Fatalf("unexpected slot booking: %+v", b)
		}
		if !b.StartTime.Equal(tomorrow(15, 0)) || !b.EndTime.Equal(tomorrow(16, 0)) {
			t.Fatalf("slot booking must inherit the window interval, got %s-%s", b.StartTime, b.EndTime)
		}
	}

	if _, err := f.svc.BookAvailabilitySlot(ctx, carol, w.ID, BookSlotRequest{}); !errors.Is(err, domain.ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}

	windows, err := f.svc.ListAvailability(ctx, f.booth.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListAvailability: %v", err)
	}
	if len(windows) != 1 || windows[0].BookedSlots != 2 || windows[0].RemainingSlots != 0 {
		t.Fatalf("unexpected windows: %+v", windows)
	}
}

func TestBookAvailabilitySlot_ConcurrentNeverExceedsMaxSlots(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 3)

	const students = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		booked int
	)
	for i := 0; i < students; i++ {
		actor := testutil.CreateUser(t, f.db, int64(100+i), fmt.Sprintf("Student %d", i), domain.RoleStudent)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.BookAvailabilitySlot(ctx, actor, w.ID, BookSlotRequest{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, domain.ErrSlotFull):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if booked != 3 {
		t.Fatalf("expected 3 bookings, got %d", booked)
	}
	var count int64
	if err := f.db.Model(&domain.Booking{}).Where("availability_id = ?", w.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 stored bookings, got %d", count)
	}
}

func TestBookAvailabilitySlot_Guards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 4)

	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, w.ID, BookSlotRequest{}); err != nil {
		t.Fatalf("first slot: %v", err)
	}
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, w.ID, BookSlotRequest{}); !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("second slot for same user: expected ErrResourceConflict, got %v", err)
	}
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, 999, BookSlotRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown window: expected ErrNotFound, got %v", err)
	}

	f.clock.Advance(31 * time.Hour)
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.bob, w.ID, BookSlotRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("started window: expected validation error, got %v", err)
	}
}

func TestPublishAvailability_Rules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.PublishAvailability(ctx, f.alice, f.booth.ID, PublishAvailabilityRequest{StartTime: tomorrow(9, 0), EndTime: tomorrow(10, 0), MaxSlots: 1}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("student publish: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.PublishAvailability(ctx, f.staff, f.booth.ID, PublishAvailabilityRequest{StartTime: tomorrow(9, 0), EndTime: tomorrow(10, 0), MaxSlots: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero slots: expected validation error, got %v", err)
	}

	b, err := f.svc.RequestBooking(ctx, f.alice, f.booth.ID, CreateBookingRequest{StartTime: tomorrow(9, 0), EndTime: tomorrow(10, 0)})
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, b.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.PublishAvailability(ctx, f.staff, f.booth.ID, PublishAvailabilityRequest{StartTime: tomorrow(9, 30), EndTime: tomorrow(11, 0), MaxSlots: 2}); !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("overlapping approved booking: expected ErrResourceConflict, got %v", err)
	}
}

func TestApprove_ConflictsWithConfirmedSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 2)
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, w.ID, BookSlotRequest{}); err != nil {
		t.Fatalf("book slot: %v", err)
	}

	b, err := f.svc.RequestBooking(ctx, f.bob, f.booth.ID, CreateBookingRequest{StartTime: tomorrow(15, 30), EndTime: tomorrow(17, 0)})
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, b.ID, domain.BookingApproved); !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("expected ErrResourceConflict against confirmed slot, got %v", err)
	}
}

func TestDeleteAvailability_BlockedThenCascade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 2)
	slot, err := f.svc.BookAvailabilitySlot(ctx, f.alice, w.ID, BookSlotRequest{})
	if err != nil {
		t.Fatalf("book slot: %v", err)
	}

	if _, err := f.svc.DeleteAvailability(ctx, f.alice, w.ID, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("student delete: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.DeleteAvailability(ctx, f.staff, w.ID, false); !errors.Is(err, domain.ErrHasActiveBookings) {
		t.Fatalf("expected ErrHasActiveBookings, got %v", err)
	}

	cancelled, err := f.svc.DeleteAvailability(ctx, f.staff, w.ID, true)
	if err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("expected 1 cancelled booking, got %d", cancelled)
	}

	got, err := f.svc.GetBooking(ctx, f.staff, slot.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != domain.BookingCancelled {
		t.Fatalf("expected slot booking to be cancelled, got %s", got.Status)
	}

	if _, err := f.svc.BookAvailabilitySlot(ctx, f.bob, w.ID, BookSlotRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted window: expected ErrNotFound, got %v", err)
	}

	logs, err := f.audit.ListByTarget(ctx, domain.TargetResource, f.booth.ID)
	if err != nil {
		t.Fatalf("ListByTarget: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 cancellation entry, got %d", len(logs))
	}
}

func TestDeleteAvailability_EmptyWindow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 2)

	cancelled, err := f.svc.DeleteAvailability(ctx, f.staff, w.ID, false)
	if err != nil {
		t.Fatalf("DeleteAvailability: %v", err)
	}
	if cancelled != 0 {
		t.Fatalf("expected nothing cancelled, got %d", cancelled)
	}
	if _, err := f.svc.DeleteAvailability(ctx, f.staff, w.ID, false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListMyBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.book(t, f.alice, tomorrow(9, 0), tomorrow(10, 0))
	f.book(t, f.alice, tomorrow(13, 0), tomorrow(14, 0))
	f.book(t, f.bob, tomorrow(9, 0), tomorrow(10, 0))

	mine, err := f.svc.ListMyBookings(ctx, f.alice, 20, 0)
	if err != nil {
		t.Fatalf("ListMyBookings: %v", err)
	}
	if len(mine) != 2 || !mine[0].StartTime.Equal(tomorrow(13, 0)) {
		t.Fatalf("expected alice's 2 bookings newest first, got %+v", mine)
	}

	calendar, err := f.svc.ListResourceBookings(ctx, f.studio.ID, tomorrow(8, 0), tomorrow(12, 0))
	if err != nil {
		t.Fatalf("ListResourceBookings: %v", err)
	}
	if len(calendar) != 2 {
		t.Fatalf("expected 2 bookings in the morning, got %d", len(calendar))
	}
}

func TestPublishAvailability_RejectsOverlappingWindow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 1)

	_, err := f.svc.PublishAvailability(ctx, f.staff, f.booth.ID, PublishAvailabilityRequest{StartTime: tomorrow(15, 30), EndTime: tomorrow(16, 30), MaxSlots: 1})
	if !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("overlapping window: expected ErrResourceConflict, got %v", err)
	}

	next := f.publish(t, tomorrow(16, 0), tomorrow(17, 0), 1)

	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, first.ID, BookSlotRequest{}); err != nil {
		t.Fatalf("book first window: %v", err)
	}
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.bob, next.ID, BookSlotRequest{}); err != nil {
		t.Fatalf("book adjacent window: %v", err)
	}

	calendar, err := f.svc.ListResourceBookings(ctx, f.booth.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListResourceBookings: %v", err)
	}
	for i := range calendar {
		for j := i + 1; j < len(calendar); j++ {
			if calendar[i].Interval().Overlaps(calendar[j].Interval()) {
				t.Fatalf("bookings %d and %d overlap", calendar[i].ID, calendar[j].ID)
			}
		}
	}
}

func TestBookAvailabilitySlot_ConfirmedBookingOutsideWindowConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 2)

	otherWindow := int64(9999)
	held := &domain.Booking{
		ResourceID:     f.booth.ID,
		AvailabilityID: &otherWindow,
		BookerID:       f.bob.UserID,
		BookerName:     "Bob",
		StartTime:      tomorrow(15, 30),
		EndTime:        tomorrow(16, 30),
		Status:         domain.BookingConfirmed,
	}
	if err := f.db.Create(held).Error; err != nil {
		t.Fatalf("insert confirmed booking: %v", err)
	}

	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, w.ID, BookSlotRequest{}); !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("expected ErrResourceConflict, got %v", err)
	}
}

func TestPublishAvailability_RejectsOverlappingConfirmedBooking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	held := &domain.Booking{
		ResourceID: f.booth.ID,
		BookerID:   f.bob.UserID,
		BookerName: "Bob",
		StartTime:  tomorrow(9, 0),
		EndTime:    tomorrow(10, 0),
		Status:     domain.BookingConfirmed,
	}
	if err := f.db.Create(held).Error; err != nil {
		t.Fatalf("insert confirmed booking: %v", err)
	}

	_, err := f.svc.PublishAvailability(ctx, f.staff, f.booth.ID, PublishAvailabilityRequest{StartTime: tomorrow(9, 30), EndTime: tomorrow(10, 30), MaxSlots: 2})
	if !errors.Is(err, domain.ErrResourceConflict) {
		t.Fatalf("expected ErrResourceConflict, got %v", err)
	}
}

func TestUnclaimedSlot_FullVersusDeleted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	windows := repository.NewAvailabilityRepository(f.db)

	full := f.publish(t, tomorrow(15, 0), tomorrow(16, 0), 1)
	if _, err := f.svc.BookAvailabilitySlot(ctx, f.alice, full.ID, BookSlotRequest{}); err != nil {
		t.Fatalf("book slot: %v", err)
	}
	if claimed, err := windows.ClaimSlot(ctx, full.ID); err != nil || claimed {
		t.Fatalf("ClaimSlot on full window: claimed=%v err=%v", claimed, err)
	}
	if err := unclaimedSlot(ctx, windows, full.ID); !errors.Is(err, domain.ErrSlotFull) {
		t.Fatalf("full window: expected ErrSlotFull, got %v", err)
	}

	gone := f.publish(t, tomorrow(17, 0), tomorrow(18, 0), 1)
	if _, err := f.svc.DeleteAvailability(ctx, f.staff, gone.ID, false); err != nil {
		t.Fatalf("DeleteAvailability: %v", err)
	}
	if claimed, err := windows.ClaimSlot(ctx, gone.ID); err != nil || claimed {
		t.Fatalf("ClaimSlot on deleted window: claimed=%v err=%v", claimed, err)
	}
	if err := unclaimedSlot(ctx, windows, gone.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted window: expected ErrNotFound, got %v", err)
	}
}

func TestDeactivatedResourceKeepsExistingBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	approved := f.book(t, f.alice, tomorrow(10, 0), tomorrow(11, 0))
	if _, err := f.svc.SetBookingStatus(ctx, f.staff, approved.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pending := f.book(t, f.bob, tomorrow(13, 0), tomorrow(14, 0))
	withdrawn := f.book(t, f.alice, tomorrow(15, 0), tomorrow(16, 0))

	cat := catalog.NewService(repository.NewResourceRepository(f.db), repository.NewEquipmentRepository(f.db), nil, nil)
	if err := cat.DeactivateResource(ctx, f.staff, f.studio.ID); err != nil {
		t.Fatalf("DeactivateResource: %v", err)
	}

	got, err := f.svc.GetBooking(ctx, f.alice, approved.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != domain.BookingApproved {
		t.Fatalf("expected approved booking to survive deactivation, got %s", got.Status)
	}

	if _, err := f.svc.SetBookingStatus(ctx, f.staff, pending.ID, domain.BookingApproved); err != nil {
		t.Fatalf("approve pending after deactivation: %v", err)
	}
	if _, err := f.svc.SetBookingStatus(ctx, f.alice, withdrawn.ID, domain.BookingCancelled); err != nil {
		t.Fatalf("cancel pending after deactivation: %v", err)
	}

	calendar, err := f.svc.ListResourceBookings(ctx, f.studio.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListResourceBookings: %v", err)
	}
	if len(calendar) != 3 {
		t.Fatalf("expected 3 bookings on the deactivated studio, got %d", len(calendar))
	}
	if calendar[0].Status != domain.BookingApproved || calendar[1].Status != domain.BookingApproved || calendar[2].Status != domain.BookingCancelled {
		t.Fatalf("unexpected statuses: %s, %s, %s", calendar[0].Status, calendar[1].Status, calendar[2].Status)
	}
}

func TestGetBooking_HiddenFromOtherStudents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.book(t, f.alice, tomorrow(10, 0), tomorrow(11, 0))

	if _, err := f.svc.GetBooking(ctx, f.alice, b.ID); err != nil {
		t.Fatalf("booker read: %v", err)
	}
	if _, err := f.svc.GetBooking(ctx, f.staff, b.ID); err != nil {
		t.Fatalf("staff read: %v", err)
	}
	if _, err := f.svc.GetBooking(ctx, f.bob, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other student: expected ErrNotFound, got %v", err)
	}
}
