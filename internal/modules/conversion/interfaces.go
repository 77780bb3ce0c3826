package conversion

import (
	"context"

	"travelcrm/internal/domain"
)

// Leads is the synchronized lead collection.
type Leads interface {
	Load(ctx context.Context) ([]domain.Lead, error)
	Get(id int64) (domain.Lead, bool)
	Update(ctx context.Context, id int64, p domain.LeadPatch) (domain.Lead, error)
}

// Customers is the synchronized customer collection.
type Customers interface {
	Load(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, id int64, p domain.CustomerPatch) (domain.Customer, error)
}

// Bookings is the synchronized booking collection.
type Bookings interface {
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)
}

// Reservations is the inventory reserve/release pair with compensation
// semantics.
type Reservations interface {
	Reserve(ctx context.Context, date string, pax int) error
	ReleaseCompensating(ctx context.Context, date string, pax int)
}

// AuditSink records the conversion outcome.
type AuditSink interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
}

// LeadLogs appends timeline entries.
type LeadLogs interface {
	AppendLog(ctx context.Context, l *domain.LeadLog) error
}
