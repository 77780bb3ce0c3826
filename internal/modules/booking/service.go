package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"travelcrm/internal/domain"
)

// Repository is the booking store.
type Repository interface {
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Patch(ctx context.Context, id int64, p domain.BookingPatch) error
	CancelWithReason(ctx context.Context, id int64, reason string) error
}

// InventoryReleaser returns pax to the date pool on cancellation.
type InventoryReleaser interface {
	Release(ctx context.Context, date string, pax int) error
}

// AuditSink records cancellations and release anomalies.
type AuditSink interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
}

type Service struct {
	repo      Repository
	inventory InventoryReleaser
	audit     AuditSink
	log       zerolog.Logger
}

func NewService(repo Repository, inventory InventoryReleaser, audit AuditSink, log zerolog.Logger) *Service {
	return &Service{repo: repo, inventory: inventory, audit: audit, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Booking, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// Cancel moves a booking to Cancelled and releases its pax back to the
// travel date's pool. The cancellation stands even if the release fails;
// that failure is a data-quality problem surfaced through the audit log.
func (s *Service) Cancel(ctx context.Context, id int64, reason, performedBy string) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled || b.Status == domain.BookingCompleted {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.repo.CancelWithReason(ctx, id, reason); err != nil {
		return nil, err
	}

	date := b.TravelDate.Format(domain.DateLayout)
	if err := s.inventory.Release(ctx, date, b.Pax); err != nil {
		s.log.Error().Err(err).Int64("booking_id", id).Str("date", date).
			Msg("failed to release inventory after cancellation")
		s.appendAudit(ctx, domain.AuditEntry{
			Action:      "cancel_release_failed",
			Module:      "booking",
			PerformedBy: performedBy,
			Details:     fmt.Sprintf("booking %s cancelled but releasing %d pax on %s failed: %v", b.Reference, b.Pax, date, err),
			Severity:    domain.SeverityWarning,
		})
	}

	s.appendAudit(ctx, domain.AuditEntry{
		Action:      "booking_cancelled",
		Module:      "booking",
		PerformedBy: performedBy,
		Details:     fmt.Sprintf("booking %s cancelled: %s", b.Reference, reason),
		Severity:    domain.SeverityInfo,
	})

	return s.repo.GetByID(ctx, id)
}

// UpdatePaymentStatus flips the payment flag on a live booking.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Booking, error) {
	switch status {
	case domain.PaymentUnpaid, domain.PaymentPaid, domain.PaymentRefunded:
	default:
		return nil, ErrValidation
	}
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.repo.Patch(ctx, id, domain.BookingPatch{PaymentStatus: &status}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// MarkCompleted is for bookings whose travel date has passed.
func (s *Service) MarkCompleted(ctx context.Context, id int64, now time.Time) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingConfirmed || b.TravelDate.After(now) {
		return nil, ErrInvalidStatusTransition
	}
	completed := domain.BookingCompleted
	if err := s.repo.Patch(ctx, id, domain.BookingPatch{Status: &completed}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) appendAudit(ctx context.Context, e domain.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, &e); err != nil {
		s.log.Error().Err(err).Str("action", e.Action).Msg("failed to write booking audit entry")
	}
}
