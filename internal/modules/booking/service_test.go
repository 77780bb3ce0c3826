package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelcrm/internal/domain"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Patch(ctx context.Context, id int64, p domain.BookingPatch) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockBookingRepo) CancelWithReason(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockReleaser struct {
	mock.Mock
}

func (m *MockReleaser) Release(ctx context.Context, date string, pax int) error {
	args := m.Called(ctx, date, pax)
	return args.Error(0)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Append(ctx context.Context, e *domain.AuditEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:         1,
		Reference:  "BK-1A2B3C4D",
		Title:      "Bali",
		Amount:     3500,
		TravelDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		Pax:        2,
		Status:     domain.BookingConfirmed,
	}
}

func newBookingService() (*Service, *MockBookingRepo, *MockReleaser, *MockAudit) {
	repo := new(MockBookingRepo)
	rel := new(MockReleaser)
	audit := new(MockAudit)
	return NewService(repo, rel, audit, zerolog.Nop()), repo, rel, audit
}

func TestCancel_ReleasesInventoryAndAudits(t *testing.T) {
	svc, repo, rel, audit := newBookingService()

	b := confirmedBooking()
	cancelled := *b
	cancelled.Status = domain.BookingCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil).Once()
	repo.On("CancelWithReason", mock.Anything, int64(1), "client request").Return(nil)
	rel.On("Release", mock.Anything, "2026-10-15", 2).Return(nil)
	audit.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == "booking_cancelled" && e.Severity == domain.SeverityInfo
	})).Return(nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&cancelled, nil)

	got, err := svc.Cancel(context.Background(), 1, "client request", "agent")
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	rel.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestCancel_ReleaseFailureDoesNotUndoCancellation(t *testing.T) {
	svc, repo, rel, audit := newBookingService()

	b := confirmedBooking()
	cancelled := *b
	cancelled.Status = domain.BookingCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil).Once()
	repo.On("CancelWithReason", mock.Anything, int64(1), "storm").Return(nil)
	rel.On("Release", mock.Anything, "2026-10-15", 2).Return(assert.AnError)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&cancelled, nil)

	got, err := svc.Cancel(context.Background(), 1, "storm", "agent")
	assert.NoError(t, err, "cancellation stands despite the failed release")
	assert.Equal(t, domain.BookingCancelled, got.Status)

	var sawWarning bool
	for _, call := range audit.Calls {
		e := call.Arguments.Get(1).(*domain.AuditEntry)
		if e.Action == "cancel_release_failed" && e.Severity == domain.SeverityWarning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}

func TestCancel_RejectsTerminalStatuses(t *testing.T) {
	svc, repo, _, _ := newBookingService()

	done := confirmedBooking()
	done.Status = domain.BookingCompleted
	repo.On("GetByID", mock.Anything, int64(1)).Return(done, nil).Once()
	_, err := svc.Cancel(context.Background(), 1, "too late", "agent")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	gone := confirmedBooking()
	gone.Status = domain.BookingCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(gone, nil).Once()
	_, err = svc.Cancel(context.Background(), 1, "again", "agent")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancel_UnknownBooking(t *testing.T) {
	svc, repo, _, _ := newBookingService()
	repo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

	_, err := svc.Cancel(context.Background(), 9, "x", "agent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	svc, repo, _, _ := newBookingService()
	ctx := context.Background()

	_, err := svc.UpdatePaymentStatus(ctx, 1, "Partial")
	assert.ErrorIs(t, err, ErrValidation)

	b := confirmedBooking()
	paid := *b
	paid.PaymentStatus = domain.PaymentPaid
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil).Once()
	status := domain.PaymentPaid
	repo.On("Patch", mock.Anything, int64(1), domain.BookingPatch{PaymentStatus: &status}).Return(nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&paid, nil)

	got, err := svc.UpdatePaymentStatus(ctx, 1, domain.PaymentPaid)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
}

func TestUpdatePaymentStatus_RejectedOnCancelled(t *testing.T) {
	svc, repo, _, _ := newBookingService()

	b := confirmedBooking()
	b.Status = domain.BookingCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	_, err := svc.UpdatePaymentStatus(context.Background(), 1, domain.PaymentRefunded)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestMarkCompleted(t *testing.T) {
	svc, repo, _, _ := newBookingService()
	now := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	b := confirmedBooking()
	completed := *b
	completed.Status = domain.BookingCompleted
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil).Once()
	st := domain.BookingCompleted
	repo.On("Patch", mock.Anything, int64(1), domain.BookingPatch{Status: &st}).Return(nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&completed, nil)

	got, err := svc.MarkCompleted(context.Background(), 1, now)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
}

func TestMarkCompleted_BeforeTravelDate(t *testing.T) {
	svc, repo, _, _ := newBookingService()

	b := confirmedBooking()
	repo.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	early := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.MarkCompleted(context.Background(), 1, early)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
