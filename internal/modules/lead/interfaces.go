package lead

import (
	"context"

	"travelcrm/internal/domain"
)

// Leads is the synchronized lead collection the service mutates through, so
// admin views observe every change optimistically.
type Leads interface {
	Load(ctx context.Context) ([]domain.Lead, error)
	Items() []domain.Lead
	Get(id int64) (domain.Lead, bool)
	Create(ctx context.Context, l domain.Lead) (domain.Lead, error)
	Update(ctx context.Context, id int64, p domain.LeadPatch) (domain.Lead, error)
	Delete(ctx context.Context, id int64) error
}

// Repository covers the lead reads and writes that bypass the cache: the
// timeline, duplicate lookup, and paged admin listing.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	ListByStatus(ctx context.Context, status *domain.LeadStatus, limit, offset int) ([]domain.Lead, int64, error)
	AppendLog(ctx context.Context, l *domain.LeadLog) error
	FindDuplicates(ctx context.Context, email, phone string) ([]domain.Lead, error)
}
