package domain

import "time"

type CustomerClass string

const (
	CustomerNew       CustomerClass = "New"
	CustomerReturning CustomerClass = "Returning"
	CustomerVIP       CustomerClass = "VIP"
)

// VIPSpendThreshold is the lifetime spend at which a customer is promoted to VIP.
const VIPSpendThreshold = 10000

// Customer is a person who has (or is about to have) at least one booking.
// Many leads may resolve to the same customer over time.
type Customer struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Classification CustomerClass `json:"classification"`
	BookingsCount  int           `json:"bookings_count"`
	TotalSpent     float64       `json:"total_spent"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (c Customer) EntityID() int64 { return c.ID }

type CustomerPatch struct {
	Name           *string        `json:"name,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Classification *CustomerClass `json:"classification,omitempty"`
	BookingsCount  *int           `json:"bookings_count,omitempty"`
	TotalSpent     *float64       `json:"total_spent,omitempty"`
}

func (c Customer) Apply(p CustomerPatch) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Classification != nil {
		c.Classification = *p.Classification
	}
	if p.BookingsCount != nil {
		c.BookingsCount = *p.BookingsCount
	}
	if p.TotalSpent != nil {
		c.TotalSpent = *p.TotalSpent
	}
	return c
}

// Classify derives the classification from booking aggregates.
func Classify(bookingsCount int, totalSpent float64) CustomerClass {
	switch {
	case totalSpent >= VIPSpendThreshold:
		return CustomerVIP
	case bookingsCount >= 1:
		return CustomerReturning
	default:
		return CustomerNew
	}
}
