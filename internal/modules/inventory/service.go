package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"travelcrm/internal/domain"
	"travelcrm/internal/metrics"
	"travelcrm/internal/repository"
)

// Repository is the remote atomic procedure pair plus allotment admin.
type Repository interface {
	EnsureDay(ctx context.Context, date string, capacity int) error
	GetDay(ctx context.Context, date string) (*domain.InventoryDay, error)
	Reserve(ctx context.Context, date string, pax int) error
	Release(ctx context.Context, date string, pax int) error
}

// AuditSink receives warning entries for compensation anomalies.
type AuditSink interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
}

// Service wraps reserve/release with compensation semantics. There is no
// optimistic local counter here: the per-date pool is shared across client
// sessions, so correctness comes from the store's atomic check alone.
type Service struct {
	repo  Repository
	audit AuditSink
	log   zerolog.Logger
}

func NewService(repo Repository, audit AuditSink, log zerolog.Logger) *Service {
	return &Service{repo: repo, audit: audit, log: log}
}

// Reserve takes pax seats on a date or fails with no partial effect.
func (s *Service) Reserve(ctx context.Context, date string, pax int) error {
	err := s.repo.Reserve(ctx, date, pax)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrInsufficientCapacity) {
		metrics.InventoryExhaustedTotal.Inc()
		return fmt.Errorf("%w: %s, %d pax requested", ErrExhausted, date, pax)
	}
	return fmt.Errorf("%w: %v", ErrLockFailed, err)
}

// Release returns pax seats on ordinary cancellation. Over-release is
// clamped by the store and surfaced as a warning audit entry, not an error.
func (s *Service) Release(ctx context.Context, date string, pax int) error {
	err := s.repo.Release(ctx, date, pax)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrOverRelease) {
		s.log.Warn().Str("date", date).Int("pax", pax).Msg("release clamped at zero booked pax")
		s.auditWarning(ctx, "release_clamped", "released "+strconv.Itoa(pax)+" pax on "+date+" exceeded booked count; clamped at zero")
		return nil
	}
	return fmt.Errorf("%w: %v", ErrLockFailed, err)
}

// ReleaseCompensating undoes an earlier reservation after a later workflow
// step failed. It never returns an error: the primary operation has already
// failed, and a failed compensation is a data-quality issue to report, not a
// reason to fail twice.
func (s *Service) ReleaseCompensating(ctx context.Context, date string, pax int) {
	if err := s.Release(ctx, date, pax); err != nil {
		s.log.Error().Err(err).Str("date", date).Int("pax", pax).Msg("compensating release failed; inventory counter needs manual reconciliation")
		s.auditWarning(ctx, "compensation_failed", "compensating release of "+strconv.Itoa(pax)+" pax on "+date+" failed: "+err.Error())
	}
}

// EnsureDay configures (or resizes) the allotment for a date.
func (s *Service) EnsureDay(ctx context.Context, date string, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity", ErrLockFailed)
	}
	return s.repo.EnsureDay(ctx, date, capacity)
}

// Day returns the current counters for a date, nil when unconfigured.
func (s *Service) Day(ctx context.Context, date string) (*domain.InventoryDay, error) {
	return s.repo.GetDay(ctx, date)
}

func (s *Service) auditWarning(ctx context.Context, action, details string) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		Action:      action,
		Module:      "inventory",
		PerformedBy: "system",
		Details:     details,
		Severity:    domain.SeverityWarning,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Msg("failed to write inventory audit entry")
	}
}
