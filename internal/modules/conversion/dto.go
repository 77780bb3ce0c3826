package conversion

import "travelcrm/internal/domain"

// ProposalSelection carries the accepted proposal option when the conversion
// goes through a priced proposal rather than the raw lead estimate.
type ProposalSelection struct {
	Title  string  `json:"title"`
	Option string  `json:"option"`
	Amount float64 `json:"amount" binding:"gt=0"`
}

type ConvertRequest struct {
	LeadID      int64              `json:"lead_id"`
	Type        domain.BookingType `json:"type"`
	PerformedBy string             `json:"performed_by"`
	Proposal    *ProposalSelection `json:"proposal,omitempty"`
}

// Result identifies the created booking and how the customer was resolved.
type Result struct {
	BookingID        int64  `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	CustomerID       int64  `json:"customer_id"`
	CustomerCreated  bool   `json:"customer_created"`
}
