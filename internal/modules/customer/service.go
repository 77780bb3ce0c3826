package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"travelcrm/internal/domain"
	"travelcrm/internal/synccache"
)

// Customers is the slice of the customer collection the service needs.
type Customers interface {
	Load(ctx context.Context) ([]domain.Customer, error)
	Items() []domain.Customer
	Get(id int64) (domain.Customer, bool)
	Update(ctx context.Context, id int64, patch domain.CustomerPatch) (domain.Customer, error)
}

// Repository covers lookups the cached collection cannot answer.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type BookingLister interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
}

type Service struct {
	customers Customers
	repo      Repository
	bookings  BookingLister
	log       zerolog.Logger
}

func NewService(customers Customers, repo Repository, bookings BookingLister, log zerolog.Logger) *Service {
	return &Service{customers: customers, repo: repo, bookings: bookings, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.Load(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	if c, ok := s.customers.Get(id); ok {
		return &c, nil
	}
	if _, err := s.customers.Load(ctx); err != nil {
		return nil, err
	}
	c, ok := s.customers.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// Search matches a customer by email (case-insensitive) or phone digits.
func (s *Service) Search(ctx context.Context, query string) (*domain.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrValidation
	}
	if strings.Contains(query, "@") {
		c, err := s.repo.FindByEmail(ctx, query)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNotFound
		}
		return c, nil
	}
	c, err := s.repo.FindByPhone(ctx, domain.NormalizePhone(query))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// Bookings returns the customer's booking history, newest first.
func (s *Service) Bookings(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	if _, err := s.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.bookings.ListByCustomer(ctx, customerID)
}

// Reclassify recomputes the class from stored aggregates. Used after
// imports or manual aggregate fixes.
func (s *Service) Reclassify(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	class := domain.Classify(c.BookingsCount, c.TotalSpent)
	if class == c.Classification {
		return c, nil
	}
	updated, err := s.customers.Update(ctx, id, domain.CustomerPatch{Classification: &class})
	if err != nil {
		if errors.Is(err, synccache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Info().Int64("customer_id", id).Str("class", string(class)).Msg("customer reclassified")
	return &updated, nil
}
