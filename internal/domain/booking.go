package domain

import "time"

type BookingType string

const (
	BookingTour  BookingType = "Tour"
	BookingHotel BookingType = "Hotel"
	BookingCar   BookingType = "Car"
	BookingBus   BookingType = "Bus"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "Unpaid"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Booking is a confirmed (or pending) sale. Once created its lifetime is
// independent of the lead it originated from.
type Booking struct {
	ID                 int64         `json:"id"`
	Reference          string        `json:"reference"`
	Type               BookingType   `json:"type"`
	CustomerID         *int64        `json:"customer_id,omitempty"`
	LeadID             *int64        `json:"lead_id,omitempty"`
	Title              string        `json:"title"`
	Amount             float64       `json:"amount"`
	TravelDate         time.Time     `json:"travel_date"`
	Pax                int           `json:"pax"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	CancellationReason string        `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (b Booking) EntityID() int64 { return b.ID }

type BookingPatch struct {
	Type          *BookingType   `json:"type,omitempty"`
	Title         *string        `json:"title,omitempty"`
	Amount        *float64       `json:"amount,omitempty"`
	TravelDate    *time.Time     `json:"travel_date,omitempty"`
	Pax           *int           `json:"pax,omitempty"`
	Status        *BookingStatus `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

func (b Booking) Apply(p BookingPatch) Booking {
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.TravelDate != nil {
		b.TravelDate = *p.TravelDate
	}
	if p.Pax != nil {
		b.Pax = *p.Pax
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	return b
}
