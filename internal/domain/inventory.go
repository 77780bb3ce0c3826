package domain

import "time"

// DateLayout is the calendar-date key format for inventory allotments.
const DateLayout = "2006-01-02"

// InventoryDay is the per-date capacity pool shared across all concurrent
// sessions. booked <= capacity must hold after every successful reservation;
// the check is enforced by the store, never by client-side optimism.
type InventoryDay struct {
	Date      string    `json:"date" gorm:"primaryKey;size:10"`
	Capacity  int       `json:"capacity"`
	Booked    int       `json:"booked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining is the pax count still available on the date.
func (d InventoryDay) Remaining() int { return d.Capacity - d.Booked }
