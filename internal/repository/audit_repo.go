package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit entry, assigning id and timestamp when unset.
func (r *AuditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Severity == "" {
		e.Severity = domain.SeverityInfo
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// List returns the newest entries first, optionally filtered by module.
func (r *AuditRepository) List(ctx context.Context, module string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&domain.AuditEntry{}).Order("created_at DESC").Limit(limit)
	if module != "" {
		q = q.Where("module = ?", module)
	}
	var entries []domain.AuditEntry
	if tx := q.Find(&entries); tx.Error != nil {
		return nil, tx.Error
	}
	return entries, nil
}
