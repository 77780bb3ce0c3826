package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

func (r *FollowUpRepository) Create(ctx context.Context, f *domain.FollowUp) error {
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	if f.Status == "" {
		f.Status = domain.FollowUpPending
	}
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FollowUpRepository) GetByID(ctx context.Context, id int64) (*domain.FollowUp, error) {
	var f domain.FollowUp
	if tx := r.db.WithContext(ctx).First(&f, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &f, nil
}

// ListPending returns all pending follow-ups ordered by scheduled time.
func (r *FollowUpRepository) ListPending(ctx context.Context) ([]domain.FollowUp, error) {
	var out []domain.FollowUp
	tx := r.db.WithContext(ctx).
		Where("status = ?", string(domain.FollowUpPending)).
		Order("scheduled_at ASC, id ASC").
		Find(&out)
	return out, tx.Error
}

func (r *FollowUpRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.FollowUp, error) {
	var out []domain.FollowUp
	tx := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("scheduled_at ASC, id ASC").
		Find(&out)
	return out, tx.Error
}

func (r *FollowUpRepository) UpdateStatus(ctx context.Context, id int64, status domain.FollowUpStatus) error {
	tx := r.db.WithContext(ctx).Model(&domain.FollowUp{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
