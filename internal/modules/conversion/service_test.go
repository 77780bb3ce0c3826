package conversion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelcrm/internal/domain"
	"travelcrm/internal/modules/inventory"
)

type MockLeads struct {
	mock.Mock
}

func (m *MockLeads) Load(ctx context.Context) ([]domain.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockLeads) Get(id int64) (domain.Lead, bool) {
	args := m.Called(id)
	return args.Get(0).(domain.Lead), args.Bool(1)
}

func (m *MockLeads) Update(ctx context.Context, id int64, p domain.LeadPatch) (domain.Lead, error) {
	args := m.Called(ctx, id, p)
	if args.Error(1) != nil {
		return domain.Lead{}, args.Error(1)
	}
	return args.Get(0).(domain.Lead), nil
}

type MockCustomers struct {
	mock.Mock
}

func (m *MockCustomers) Load(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomers) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	args := m.Called(ctx, c)
	if args.Error(1) != nil {
		return domain.Customer{}, args.Error(1)
	}
	c.ID = 501 // simulate store-assigned id
	return c, nil
}

func (m *MockCustomers) Update(ctx context.Context, id int64, p domain.CustomerPatch) (domain.Customer, error) {
	args := m.Called(ctx, id, p)
	if args.Error(1) != nil {
		return domain.Customer{}, args.Error(1)
	}
	return args.Get(0).(domain.Customer), nil
}

type MockBookings struct {
	mock.Mock
}

func (m *MockBookings) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	args := m.Called(ctx, b)
	if args.Error(1) != nil {
		return domain.Booking{}, args.Error(1)
	}
	b.ID = 900
	return b, nil
}

type MockReservations struct {
	mock.Mock
}

func (m *MockReservations) Reserve(ctx context.Context, date string, pax int) error {
	args := m.Called(ctx, date, pax)
	return args.Error(0)
}

func (m *MockReservations) ReleaseCompensating(ctx context.Context, date string, pax int) {
	m.Called(ctx, date, pax)
}

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Append(ctx context.Context, e *domain.AuditEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockLeadLogs struct {
	mock.Mock
}

func (m *MockLeadLogs) AppendLog(ctx context.Context, l *domain.LeadLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

type fixture struct {
	svc          *Service
	leads        *MockLeads
	customers    *MockCustomers
	bookings     *MockBookings
	reservations *MockReservations
	audit        *MockAuditSink
	logs         *MockLeadLogs
}

func newFixture() *fixture {
	f := &fixture{
		leads:        new(MockLeads),
		customers:    new(MockCustomers),
		bookings:     new(MockBookings),
		reservations: new(MockReservations),
		audit:        new(MockAuditSink),
		logs:         new(MockLeadLogs),
	}
	f.svc = NewService(f.leads, f.customers, f.bookings, f.reservations, f.audit, f.logs, zerolog.Nop())
	return f
}

func hotLead() domain.Lead {
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	return domain.Lead{
		ID:             1,
		Name:           "Aruzhan Serikova",
		Email:          "aruzhan@mail.kz",
		Phone:          "+7 701 555 1001",
		Destination:    "Bali",
		TravelStart:    &start,
		TravelEnd:      &end,
		Travelers:      2,
		PotentialValue: 3500,
		Status:         domain.LeadHot,
		Priority:       domain.PriorityHigh,
	}
}

func TestConvert_NewCustomerCreated(t *testing.T) {
	f := newFixture()
	l := hotLead()

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{}, nil)
	f.customers.On("Create", mock.Anything, mock.MatchedBy(func(c domain.Customer) bool {
		return c.Name == l.Name && c.Email == l.Email && c.Classification == domain.CustomerNew
	})).Return(domain.Customer{}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b domain.Booking) bool {
		return b.Title == "Bali" && b.Amount == 3500 && b.Pax == 2 &&
			b.Status == domain.BookingConfirmed && b.PaymentStatus == domain.PaymentUnpaid &&
			b.CustomerID != nil && *b.CustomerID == 501
	})).Return(domain.Booking{}, nil)
	f.leads.On("Update", mock.Anything, int64(1), mock.Anything).Return(domain.Lead{}, nil)
	f.logs.On("AppendLog", mock.Anything, mock.MatchedBy(func(e *domain.LeadLog) bool {
		return e.Kind == domain.LogSystem && e.LeadID == 1
	})).Return(nil)
	f.customers.On("Update", mock.Anything, int64(501), mock.Anything).Return(domain.Customer{}, nil)
	f.audit.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == "lead_converted" && e.Severity == domain.SeverityInfo
	})).Return(nil)

	res, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1, PerformedBy: "agent"})

	assert.NoError(t, err)
	assert.True(t, res.CustomerCreated)
	assert.Equal(t, int64(501), res.CustomerID)
	assert.Equal(t, int64(900), res.BookingID)
	assert.NotEmpty(t, res.BookingReference)
	f.bookings.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestConvert_LinksExistingCustomerByCaseInsensitiveEmail(t *testing.T) {
	f := newFixture()
	l := hotLead()
	l.Email = "ARUZHAN@MAIL.KZ"

	existing := domain.Customer{ID: 42, Name: "Aruzhan", Email: "aruzhan@mail.kz", BookingsCount: 1, TotalSpent: 2000}

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{existing}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b domain.Booking) bool {
		return b.CustomerID != nil && *b.CustomerID == 42
	})).Return(domain.Booking{}, nil)
	f.leads.On("Update", mock.Anything, int64(1), mock.Anything).Return(domain.Lead{}, nil)
	f.logs.On("AppendLog", mock.Anything, mock.Anything).Return(nil)
	f.customers.On("Update", mock.Anything, int64(42), mock.MatchedBy(func(p domain.CustomerPatch) bool {
		return p.BookingsCount != nil && *p.BookingsCount == 2 &&
			p.TotalSpent != nil && *p.TotalSpent == 5500
	})).Return(domain.Customer{}, nil)
	f.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1, PerformedBy: "agent"})

	assert.NoError(t, err)
	assert.False(t, res.CustomerCreated)
	assert.Equal(t, int64(42), res.CustomerID)
	f.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConvert_InventoryExhaustedLeavesEverythingUntouched(t *testing.T) {
	f := newFixture()
	l := hotLead() // 2 travelers against a nearly full date

	existing := domain.Customer{ID: 42, Email: "aruzhan@mail.kz"}

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{existing}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).
		Return(fmt.Errorf("%w: 2026-10-15, 2 pax requested", inventory.ErrExhausted))

	_, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1, PerformedBy: "agent"})

	assert.ErrorIs(t, err, inventory.ErrExhausted)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.reservations.AssertNotCalled(t, "ReleaseCompensating", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestConvert_BookingFailureReleasesReservation(t *testing.T) {
	f := newFixture()
	l := hotLead()

	existing := domain.Customer{ID: 42, Email: "aruzhan@mail.kz"}

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{existing}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(domain.Booking{}, assert.AnError)
	f.reservations.On("ReleaseCompensating", mock.Anything, "2026-10-15", 2).Return()

	_, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1, PerformedBy: "agent"})

	assert.Error(t, err)
	f.reservations.AssertCalled(t, "ReleaseCompensating", mock.Anything, "2026-10-15", 2)
	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvert_LeadFlipFailureKeepsBookingAndWarns(t *testing.T) {
	f := newFixture()
	l := hotLead()

	existing := domain.Customer{ID: 42, Email: "aruzhan@mail.kz"}

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{existing}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(domain.Booking{}, nil)
	f.leads.On("Update", mock.Anything, int64(1), mock.Anything).
		Return(domain.Lead{}, assert.AnError)
	f.logs.On("AppendLog", mock.Anything, mock.Anything).Return(nil)
	f.customers.On("Update", mock.Anything, int64(42), mock.Anything).Return(domain.Customer{}, nil)
	f.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1, PerformedBy: "agent"})

	assert.NoError(t, err, "the committed booking stands")
	assert.Equal(t, int64(900), res.BookingID)

	var sawWarning bool
	for _, call := range f.audit.Calls {
		e := call.Arguments.Get(1).(*domain.AuditEntry)
		if e.Action == "conversion_inconsistent" && e.Severity == domain.SeverityWarning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning, "a consistency warning must be recorded")
	f.reservations.AssertNotCalled(t, "ReleaseCompensating", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvert_Preconditions(t *testing.T) {
	base := hotLead()

	cases := []struct {
		name   string
		mutate func(*domain.Lead)
	}{
		{"already converted", func(l *domain.Lead) { l.Status = domain.LeadConverted }},
		{"cold lead", func(l *domain.Lead) { l.Status = domain.LeadCold }},
		{"no travel date", func(l *domain.Lead) { l.TravelStart = nil }},
		{"no title", func(l *domain.Lead) { l.Destination = "" }},
		{"no amount", func(l *domain.Lead) { l.PotentialValue = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			l := base
			tc.mutate(&l)
			f.leads.On("Get", int64(1)).Return(l, true)

			_, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 1})
			assert.ErrorIs(t, err, ErrPrecondition)
			f.reservations.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
			f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestConvert_UnknownLeadAfterReload(t *testing.T) {
	f := newFixture()
	f.leads.On("Get", int64(7)).Return(domain.Lead{}, false)
	f.leads.On("Load", mock.Anything).Return([]domain.Lead{}, nil)

	_, err := f.svc.Convert(context.Background(), ConvertRequest{LeadID: 7})
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestConvert_ProposalOverridesTitleAndAmount(t *testing.T) {
	f := newFixture()
	l := hotLead()
	l.PotentialValue = 0 // no amount on the lead itself

	existing := domain.Customer{ID: 42, Email: "aruzhan@mail.kz"}

	f.leads.On("Get", int64(1)).Return(l, true)
	f.customers.On("Load", mock.Anything).Return([]domain.Customer{existing}, nil)
	f.reservations.On("Reserve", mock.Anything, "2026-10-15", 2).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b domain.Booking) bool {
		return b.Title == "Bali Honeymoon Deluxe" && b.Amount == 4200
	})).Return(domain.Booking{}, nil)
	f.leads.On("Update", mock.Anything, int64(1), mock.Anything).Return(domain.Lead{}, nil)
	f.logs.On("AppendLog", mock.Anything, mock.Anything).Return(nil)
	f.customers.On("Update", mock.Anything, int64(42), mock.Anything).Return(domain.Customer{}, nil)
	f.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Convert(context.Background(), ConvertRequest{
		LeadID:      1,
		PerformedBy: "agent",
		Proposal:    &ProposalSelection{Title: "Bali Honeymoon Deluxe", Amount: 4200},
	})

	assert.NoError(t, err)
	f.bookings.AssertExpectations(t)
}
