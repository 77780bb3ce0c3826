package domain

import (
	"strings"
	"time"
	"unicode"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "New"
	LeadWarm      LeadStatus = "Warm"
	LeadHot       LeadStatus = "Hot"
	LeadCold      LeadStatus = "Cold"
	LeadOfferSent LeadStatus = "Offer Sent"
	LeadConverted LeadStatus = "Converted"
)

type LeadPriority string

const (
	PriorityHigh   LeadPriority = "High"
	PriorityMedium LeadPriority = "Medium"
	PriorityLow    LeadPriority = "Low"
)

type LeadLogKind string

const (
	LogNote     LeadLogKind = "Note"
	LogCall     LeadLogKind = "Call"
	LogEmail    LeadLogKind = "Email"
	LogQuote    LeadLogKind = "Quote"
	LogSystem   LeadLogKind = "System"
	LogWhatsApp LeadLogKind = "WhatsApp"
)

// LeadLog is an append-only entry on a lead's timeline. Entries are never
// updated or removed once written.
type LeadLog struct {
	ID        int64       `json:"id"`
	LeadID    int64       `json:"lead_id"`
	Kind      LeadLogKind `json:"kind"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// Lead is a prospective customer inquiry tracked through the sales pipeline.
type Lead struct {
	ID                  int64        `json:"id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	Phone               string       `json:"phone"`
	WhatsApp            string       `json:"whatsapp,omitempty"`
	WhatsAppSameAsPhone bool         `json:"whatsapp_same_as_phone"`
	Destination         string       `json:"destination"`
	TravelStart         *time.Time   `json:"travel_start,omitempty"`
	TravelEnd           *time.Time   `json:"travel_end,omitempty"`
	Travelers           int          `json:"travelers"`
	PotentialValue      float64      `json:"potential_value"`
	Status              LeadStatus   `json:"status"`
	Priority            LeadPriority `json:"priority"`
	Source              string       `json:"source,omitempty"`
	AssignedTo          string       `json:"assigned_to,omitempty"`
	Logs                []LeadLog    `json:"logs,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

func (l Lead) EntityID() int64 { return l.ID }

// IsConverted reports whether the lead reached its terminal status.
func (l Lead) IsConverted() bool { return l.Status == LeadConverted }

// LeadPatch is a partial update; nil fields are left untouched.
type LeadPatch struct {
	Name                *string       `json:"name,omitempty"`
	Email               *string       `json:"email,omitempty"`
	Phone               *string       `json:"phone,omitempty"`
	WhatsApp            *string       `json:"whatsapp,omitempty"`
	WhatsAppSameAsPhone *bool         `json:"whatsapp_same_as_phone,omitempty"`
	Destination         *string       `json:"destination,omitempty"`
	TravelStart         *time.Time    `json:"travel_start,omitempty"`
	TravelEnd           *time.Time    `json:"travel_end,omitempty"`
	Travelers           *int          `json:"travelers,omitempty"`
	PotentialValue      *float64      `json:"potential_value,omitempty"`
	Status              *LeadStatus   `json:"status,omitempty"`
	Priority            *LeadPriority `json:"priority,omitempty"`
	Source              *string       `json:"source,omitempty"`
	AssignedTo          *string       `json:"assigned_to,omitempty"`
}

// Apply merges the patch into a copy of the lead.
func (l Lead) Apply(p LeadPatch) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.WhatsApp != nil {
		l.WhatsApp = *p.WhatsApp
	}
	if p.WhatsAppSameAsPhone != nil {
		l.WhatsAppSameAsPhone = *p.WhatsAppSameAsPhone
	}
	if p.Destination != nil {
		l.Destination = *p.Destination
	}
	if p.TravelStart != nil {
		l.TravelStart = p.TravelStart
	}
	if p.TravelEnd != nil {
		l.TravelEnd = p.TravelEnd
	}
	if p.Travelers != nil {
		l.Travelers = *p.Travelers
	}
	if p.PotentialValue != nil {
		l.PotentialValue = *p.PotentialValue
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Priority != nil {
		l.Priority = *p.Priority
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	return l
}

// NormalizePhone strips a phone number down to its digits. Two numbers are
// considered the same when the digit strings match, or when both carry at
// least ten digits and the last ten match (country-code variants).
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SamePhone compares two already raw phone strings via NormalizePhone.
func SamePhone(a, b string) bool {
	da, db := NormalizePhone(a), NormalizePhone(b)
	if da == "" || db == "" {
		return false
	}
	if da == db {
		return true
	}
	if len(da) >= 10 && len(db) >= 10 {
		return da[len(da)-10:] == db[len(db)-10:]
	}
	return false
}
