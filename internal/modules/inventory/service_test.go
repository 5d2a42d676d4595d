package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"musicportal/internal/domain"
	"musicportal/internal/modules/audit"
	"musicportal/internal/repository"
	"musicportal/internal/testutil"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	audit *audit.Service
	clock *testutil.Clock
	staff domain.Actor
	alice domain.Actor
	bob   domain.Actor
	micro *domain.Equipment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Time{})
	names := repository.NewUserRepository(db)
	auditSvc := audit.NewService(db, names, audit.WithClock(clock.Now))

	return &fixture{
		db:    db,
		svc:   NewService(db, auditSvc, names, WithClock(clock.Now)),
		audit: auditSvc,
		clock: clock,
		staff: testutil.CreateUser(t, db, 1, "Mr. Serik", domain.RoleTeacher),
		alice: testutil.CreateUser(t, db, 2, "Alice", domain.RoleStudent),
		bob:   testutil.CreateUser(t, db, 3, "Bob", domain.RoleStudent),
		micro: testutil.CreateEquipment(t, db, "Shure SM58", 5, 5),
	}
}

func (f *fixture) request(t *testing.T, actor domain.Actor, qty int) (*LoanResponse, error) {
	t.Helper()
	ret := f.clock.Now().Add(48 * time.Hour)
	return f.svc.RequestLoan(context.Background(), actor, f.micro.ID, RequestLoanRequest{Qty: qty, ReturnDate: &ret})
}

func TestRequestLoan_SecondRequestExceedsStock(t *testing.T) {
	f := setup(t)

	loan, err := f.request(t, f.alice, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPending, loan.Status)
	assert.Equal(t, "Alice", loan.UserName)
	assert.Equal(t, 2, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	_, err = f.request(t, f.bob, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	var count int64
	require.NoError(t, f.db.Model(&domain.Loan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestLoan_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.request(t, f.alice, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	past := f.clock.Now().Add(-time.Hour)
	_, err = f.svc.RequestLoan(ctx, f.alice, f.micro.ID, RequestLoanRequest{Qty: 1, ReturnDate: &past})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.RequestLoan(ctx, f.alice, 999, RequestLoanRequest{Qty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestLoan_DefaultReturnDate(t *testing.T) {
	f := setup(t)

	loan, err := f.svc.RequestLoan(context.Background(), f.alice, f.micro.ID, RequestLoanRequest{Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(defaultLoanPeriod), loan.ReturnDate.UTC())
}

func TestRequestLoan_InactiveEquipmentIsNotFound(t *testing.T) {
	f := setup(t)
	require.NoError(t, repository.NewEquipmentRepository(f.db).SetActive(context.Background(), f.micro.ID, false))

	_, err := f.request(t, f.alice, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 5, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)
}

func TestRequestLoan_ConcurrentRequestsNeverOverallocate(t *testing.T) {
	f := setup(t)

	const callers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.request(t, f.alice, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, callers-5, short)

	item := testutil.ReloadEquipment(t, f.db, f.micro.ID)
	assert.Equal(t, 0, item.AvailableQty)
	assert.Equal(t, 5, item.TotalQty)
}

func TestSetLoanStatus_RejectRestoresQuantity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loan, err := f.request(t, f.alice, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	rejected, err := f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanRejected, rejected.Status)
	assert.Equal(t, 5, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	logs, err := f.audit.ListByTarget(ctx, domain.TargetEquipment, f.micro.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.LogUsage, logs[0].Type)
	assert.Equal(t, "Rejected loan of 2x for Alice", logs[0].Note)
}

func TestSetLoanStatus_DoubleReturnReleasesOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loan, err := f.request(t, f.alice, 2)
	require.NoError(t, err)
	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanActive)
	require.NoError(t, err)
	assert.Equal(t, 3, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	returned, err := f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanReturned)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, 5, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanReturned)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 5, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)

	logs, err := f.audit.ListByTarget(ctx, domain.TargetEquipment, f.micro.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Checked out 2x to Alice", logs[0].Note)
	assert.Equal(t, "Returned 2x by Alice", logs[1].Note)
}

func TestSetLoanStatus_OverdueIsDerived(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loan, err := f.request(t, f.alice, 1)
	require.NoError(t, err)
	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanActive)
	require.NoError(t, err)

	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanOverdue)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.clock.Advance(72 * time.Hour)

	got, err := f.svc.GetLoan(ctx, f.alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanActive, got.Status)
	assert.Equal(t, domain.LoanOverdue, got.DisplayStatus)

	overdue, err := f.svc.ListLoans(ctx, f.staff, repository.LoanFilter{Status: domain.LoanOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, loan.ID, overdue[0].ID)

	active, err := f.svc.ListLoans(ctx, f.staff, repository.LoanFilter{Status: domain.LoanActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	returned, err := f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanReturned)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, returned.DisplayStatus)
	assert.Equal(t, 5, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)
}

func TestSetLoanStatus_IllegalTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loan, err := f.request(t, f.alice, 1)
	require.NoError(t, err)

	_, err = f.svc.SetLoanStatus(ctx, f.alice, loan.ID, domain.LoanActive)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanReturned)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanStatus("lost"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SetLoanStatus(ctx, f.staff, 999, domain.LoanActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, tx *gorm.DB, e audit.Entry) (*domain.EquipmentLog, error) {
	args := m.Called(ctx, tx, e)
	if log, ok := args.Get(0).(*domain.EquipmentLog); ok {
		return log, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSetLoanStatus_AuditFailureRollsBackRelease(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loan, err := f.request(t, f.alice, 2)
	require.NoError(t, err)

	recorder := new(mockRecorder)
	recorder.On("Record", mock.Anything, mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.Type == domain.LogUsage && e.TargetID == f.micro.ID
	})).Return(nil, errors.New("disk full"))

	svc := NewService(f.db, recorder, repository.NewUserRepository(f.db), WithClock(f.clock.Now))
	_, err = svc.SetLoanStatus(ctx, f.staff, loan.ID, domain.LoanRejected)
	require.Error(t, err)
	recorder.AssertExpectations(t)

	assert.Equal(t, 3, testutil.ReloadEquipment(t, f.db, f.micro.ID).AvailableQty)
	stored, err := f.svc.GetLoan(ctx, f.staff, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPending, stored.Status)
}

func TestAdjustCatalogQuantity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.request(t, f.alice, 3)
	require.NoError(t, err)

	_, err = f.svc.AdjustCatalogQuantity(ctx, f.staff, f.micro.ID, 1)
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)
	item := testutil.ReloadEquipment(t, f.db, f.micro.ID)
	assert.Equal(t, 5, item.TotalQty)
	assert.Equal(t, 2, item.AvailableQty)

	resized, err := f.svc.AdjustCatalogQuantity(ctx, f.staff, f.micro.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, resized.TotalQty)
	assert.Equal(t, 0, resized.AvailableQty)

	grown, err := f.svc.AdjustCatalogQuantity(ctx, f.staff, f.micro.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, grown.TotalQty)
	assert.Equal(t, 5, grown.AvailableQty)

	logs, err := f.audit.ListByTarget(ctx, domain.TargetEquipment, f.micro.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.LogMaintenance, logs[0].Type)
	assert.Equal(t, "Quantity adjusted from 5 to 3", logs[0].Note)
}

func TestAdjustCatalogQuantity_Guards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.AdjustCatalogQuantity(ctx, f.alice, f.micro.ID, 10)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.AdjustCatalogQuantity(ctx, f.staff, f.micro.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AdjustCatalogQuantity(ctx, f.staff, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListLoans_StudentsSeeOwnOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.request(t, f.alice, 1)
	require.NoError(t, err)
	bobs, err := f.request(t, f.bob, 1)
	require.NoError(t, err)

	mine, err := f.svc.ListLoans(ctx, f.alice, repository.LoanFilter{UserID: f.bob.UserID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.alice.UserID, mine[0].UserID)

	all, err := f.svc.ListLoans(ctx, f.staff, repository.LoanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.GetLoan(ctx, f.alice, bobs.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
