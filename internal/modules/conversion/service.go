package conversion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"travelcrm/internal/domain"
	"travelcrm/internal/metrics"
	"travelcrm/internal/modules/lead"
)

// Service turns an accepted lead (optionally via a priced proposal) into a
// confirmed booking: resolve the customer, reserve inventory, create the
// booking, flip the lead, write the trail. Steps up to booking creation roll
// back via compensating actions; afterwards it is log-and-continue, because
// reversing a committed booking is worse than a reconcilable status mismatch.
type Service struct {
	leads        Leads
	customers    Customers
	bookings     Bookings
	reservations Reservations
	audit        AuditSink
	logs         LeadLogs
	log          zerolog.Logger
}

func NewService(
	leads Leads,
	customers Customers,
	bookings Bookings,
	reservations Reservations,
	audit AuditSink,
	logs LeadLogs,
	log zerolog.Logger,
) *Service {
	return &Service{
		leads:        leads,
		customers:    customers,
		bookings:     bookings,
		reservations: reservations,
		audit:        audit,
		logs:         logs,
		log:          log,
	}
}

func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*Result, error) {
	// Step 1: preconditions. Fail fast with zero side effects.
	l, ok := s.leads.Get(req.LeadID)
	if !ok {
		if _, err := s.leads.Load(ctx); err != nil {
			return nil, err
		}
		if l, ok = s.leads.Get(req.LeadID); !ok {
			return nil, &PreconditionError{Reason: "lead does not exist"}
		}
	}
	if l.IsConverted() {
		return nil, &PreconditionError{Reason: "lead is already converted"}
	}
	if !lead.CanTransition(l.Status, domain.LeadConverted) {
		return nil, &PreconditionError{Reason: fmt.Sprintf("lead in status %q cannot convert", l.Status)}
	}

	title := strings.TrimSpace(l.Destination)
	amount := l.PotentialValue
	if req.Proposal != nil {
		if t := strings.TrimSpace(req.Proposal.Title); t != "" {
			title = t
		}
		amount = req.Proposal.Amount
	}
	if title == "" {
		return nil, &PreconditionError{Reason: "lead has no destination or proposal title"}
	}
	if l.TravelStart == nil {
		return nil, &PreconditionError{Reason: "lead has no travel date"}
	}
	if amount <= 0 {
		return nil, &PreconditionError{Reason: "no positive booking amount available"}
	}
	pax := l.Travelers
	if pax <= 0 {
		pax = 1
	}

	// Step 2: resolve the customer, reusing an existing record when email
	// (case-insensitive) or phone matches.
	cust, created, err := s.resolveCustomer(ctx, l)
	if err != nil {
		return nil, err
	}

	// Step 3: reserve inventory. Failure aborts everything; the only side
	// effect so far is a possibly created customer record, which is benign
	// and reusable.
	travelDate := l.TravelStart.Format(domain.DateLayout)
	if err := s.reservations.Reserve(ctx, travelDate, pax); err != nil {
		return nil, err
	}

	// Step 4: create the booking; release the reservation on failure.
	bookingType := req.Type
	if bookingType == "" {
		bookingType = domain.BookingTour
	}
	booking := domain.Booking{
		Reference:     newReference(),
		Type:          bookingType,
		CustomerID:    &cust.ID,
		LeadID:        &l.ID,
		Title:         title,
		Amount:        amount,
		TravelDate:    *l.TravelStart,
		Pax:           pax,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentUnpaid,
	}
	persisted, err := s.bookings.Create(ctx, booking)
	if err != nil {
		s.reservations.ReleaseCompensating(ctx, travelDate, pax)
		return nil, err
	}

	// Step 5: flip the lead. The booking is committed; a failure here is
	// reported, not rolled back.
	converted := domain.LeadConverted
	if _, err := s.leads.Update(ctx, l.ID, domain.LeadPatch{Status: &converted}); err != nil {
		s.log.Error().Err(err).Int64("lead_id", l.ID).Int64("booking_id", persisted.ID).
			Msg("lead status update failed after booking commit")
		s.appendAudit(ctx, domain.AuditEntry{
			Action:      "conversion_inconsistent",
			Module:      "conversion",
			PerformedBy: req.PerformedBy,
			Details: fmt.Sprintf("booking %s committed but lead %d could not be marked Converted: %v",
				persisted.Reference, l.ID, err),
			Severity: domain.SeverityWarning,
		})
	}

	// Step 6: trail. Best effort from here on.
	s.appendLeadLog(ctx, l.ID, fmt.Sprintf("Converted to booking %s (%s, %d pax, %.2f)",
		persisted.Reference, travelDate, pax, amount))
	s.bumpCustomerAggregates(ctx, cust, amount)

	outcome := "customer linked"
	if created {
		outcome = "customer created"
	}
	s.appendAudit(ctx, domain.AuditEntry{
		Action:      "lead_converted",
		Module:      "conversion",
		PerformedBy: req.PerformedBy,
		Details: fmt.Sprintf("lead %d converted to booking %s for customer %d (%s)",
			l.ID, persisted.Reference, cust.ID, outcome),
		Severity: domain.SeverityInfo,
	})

	metrics.LeadConversionsTotal.Inc()

	return &Result{
		BookingID:        persisted.ID,
		BookingReference: persisted.Reference,
		CustomerID:       cust.ID,
		CustomerCreated:  created,
	}, nil
}

// resolveCustomer reuses an existing customer matched by case-insensitive
// email, then exact phone; otherwise creates one classified New.
func (s *Service) resolveCustomer(ctx context.Context, l domain.Lead) (domain.Customer, bool, error) {
	existing, err := s.customers.Load(ctx)
	if err != nil {
		return domain.Customer{}, false, err
	}
	if l.Email != "" {
		for _, c := range existing {
			if strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(l.Email)) {
				return c, false, nil
			}
		}
	}
	if l.Phone != "" {
		for _, c := range existing {
			if c.Phone == l.Phone {
				return c, false, nil
			}
		}
	}

	created, err := s.customers.Create(ctx, domain.Customer{
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		Classification: domain.CustomerNew,
	})
	if err != nil {
		return domain.Customer{}, false, err
	}
	return created, true, nil
}

func (s *Service) bumpCustomerAggregates(ctx context.Context, cust domain.Customer, amount float64) {
	count := cust.BookingsCount + 1
	total := cust.TotalSpent + amount
	class := domain.Classify(count, total)
	_, err := s.customers.Update(ctx, cust.ID, domain.CustomerPatch{
		BookingsCount:  &count,
		TotalSpent:     &total,
		Classification: &class,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("customer_id", cust.ID).Msg("failed to update customer aggregates")
	}
}

func (s *Service) appendLeadLog(ctx context.Context, leadID int64, message string) {
	entry := &domain.LeadLog{
		LeadID:    leadID,
		Kind:      domain.LogSystem,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		s.log.Error().Err(err).Int64("lead_id", leadID).Msg("failed to append conversion log")
	}
}

func (s *Service) appendAudit(ctx context.Context, e domain.AuditEntry) {
	if err := s.audit.Append(ctx, &e); err != nil {
		s.log.Error().Err(err).Str("action", e.Action).Msg("failed to write audit entry")
	}
}

func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
