package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelcrm/internal/domain"
)

var (
	// ErrInsufficientCapacity means booked + pax would exceed capacity, or
	// the date has no allotment configured at all.
	ErrInsufficientCapacity = errors.New("insufficient capacity for date")
	// ErrOverRelease means a release was clamped at zero booked pax.
	ErrOverRelease = errors.New("release exceeds booked pax")
)

// InventoryRepository owns the per-date capacity counters. Reservation
// correctness comes from single guarded UPDATE statements executed by the
// database, never from a read-then-write on the client.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// EnsureDay upserts the capacity allotment for a date, preserving the booked
// counter when the row exists.
func (r *InventoryRepository) EnsureDay(ctx context.Context, date string, capacity int) error {
	day := domain.InventoryDay{Date: date, Capacity: capacity, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"capacity": capacity, "updated_at": day.UpdatedAt}),
	}).Create(&day).Error
}

func (r *InventoryRepository) GetDay(ctx context.Context, date string) (*domain.InventoryDay, error) {
	var day domain.InventoryDay
	if tx := r.db.WithContext(ctx).First(&day, "date = ?", date); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &day, nil
}

// Reserve atomically takes pax seats on the date. The guard in the WHERE
// clause makes over-reservation impossible regardless of concurrent callers:
// either the whole increment applies or nothing does.
func (r *InventoryRepository) Reserve(ctx context.Context, date string, pax int) error {
	if pax <= 0 {
		return ErrInsufficientCapacity
	}
	tx := r.db.WithContext(ctx).Exec(
		`UPDATE inventory_days SET booked = booked + ?, updated_at = ? WHERE date = ? AND booked + ? <= capacity`,
		pax, time.Now().UTC(), date, pax,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrInsufficientCapacity
	}
	return nil
}

// Release returns pax seats to the date's pool. Releasing more than is
// currently booked clamps at zero and reports ErrOverRelease so the caller
// can surface the logic bug without blocking compensation.
func (r *InventoryRepository) Release(ctx context.Context, date string, pax int) error {
	if pax <= 0 {
		return nil
	}
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Exec(
		`UPDATE inventory_days SET booked = booked - ?, updated_at = ? WHERE date = ? AND booked >= ?`,
		pax, now, date, pax,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}
	clamp := r.db.WithContext(ctx).Exec(
		`UPDATE inventory_days SET booked = 0, updated_at = ? WHERE date = ? AND booked > 0`,
		now, date,
	)
	if clamp.Error != nil {
		return clamp.Error
	}
	return ErrOverRelease
}
