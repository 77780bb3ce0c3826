package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travelcrm/internal/domain"
	"travelcrm/internal/repository"

	_ "modernc.org/sqlite"
)

type recordingAudit struct {
	entries []domain.AuditEntry
}

func (r *recordingAudit) Append(ctx context.Context, e *domain.AuditEntry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func setupService(t *testing.T) (*Service, *repository.InventoryRepository, *recordingAudit) {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.InventoryDay{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	repo := repository.NewInventoryRepository(db)
	audit := &recordingAudit{}
	return NewService(repo, audit, zerolog.Nop()), repo, audit
}

func TestReserve_DecrementsPool(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 10))
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 3))

	day, err := svc.Day(ctx, "2026-10-15")
	assert.NoError(t, err)
	assert.Equal(t, 3, day.Booked)
	assert.Equal(t, 7, day.Remaining())
}

func TestReserve_ExhaustedLeavesCountersUntouched(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 10))
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 9))

	err := svc.Reserve(ctx, "2026-10-15", 2)
	assert.ErrorIs(t, err, ErrExhausted)

	day, err := svc.Day(ctx, "2026-10-15")
	assert.NoError(t, err)
	assert.Equal(t, 9, day.Booked, "failed reservation must not change the pool")

	// The last seat is still takeable.
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 1))
}

func TestReserve_UnconfiguredDate(t *testing.T) {
	svc, _, _ := setupService(t)

	err := svc.Reserve(context.Background(), "2026-12-01", 1)
	assert.ErrorIs(t, err, ErrExhausted, "a date with no allotment has zero capacity")
}

func TestRelease_ReturnsSeats(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 10))
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 5))
	assert.NoError(t, svc.Release(ctx, "2026-10-15", 2))

	day, _ := svc.Day(ctx, "2026-10-15")
	assert.Equal(t, 3, day.Booked)
}

func TestRelease_OverReleaseClampsAtZeroAndWarns(t *testing.T) {
	svc, _, audit := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 10))
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 2))

	// Releasing more than booked clamps and is not an error for the caller.
	assert.NoError(t, svc.Release(ctx, "2026-10-15", 5))

	day, _ := svc.Day(ctx, "2026-10-15")
	assert.Equal(t, 0, day.Booked, "booked never goes negative")

	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, "release_clamped", audit.entries[0].Action)
		assert.Equal(t, domain.SeverityWarning, audit.entries[0].Severity)
	}
}

func TestReleaseCompensating_NeverPropagatesFailure(t *testing.T) {
	svc, _, audit := setupService(t)
	ctx := context.Background()

	// No allotment row at all: the underlying release reports over-release,
	// compensation still must not blow up.
	svc.ReleaseCompensating(ctx, "2026-12-24", 2)

	assert.NotEmpty(t, audit.entries)
}

func TestEnsureDay_ResizePreservesBooked(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 10))
	assert.NoError(t, svc.Reserve(ctx, "2026-10-15", 4))
	assert.NoError(t, svc.EnsureDay(ctx, "2026-10-15", 20))

	day, _ := svc.Day(ctx, "2026-10-15")
	assert.Equal(t, 20, day.Capacity)
	assert.Equal(t, 4, day.Booked)
}

func TestDay_UnknownDateIsNil(t *testing.T) {
	svc, _, _ := setupService(t)

	day, err := svc.Day(context.Background(), "2030-01-01")
	assert.NoError(t, err)
	assert.Nil(t, day)
}
