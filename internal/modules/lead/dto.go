package lead

import (
	"time"

	"travelcrm/internal/domain"
)

type CreateLeadRequest struct {
	Name                string              `json:"name" binding:"required"`
	Email               string              `json:"email"`
	Phone               string              `json:"phone"`
	WhatsApp            string              `json:"whatsapp"`
	WhatsAppSameAsPhone bool                `json:"whatsapp_same_as_phone"`
	Destination         string              `json:"destination"`
	TravelStart         *time.Time          `json:"travel_start"`
	TravelEnd           *time.Time          `json:"travel_end"`
	Travelers           int                 `json:"travelers"`
	PotentialValue      float64             `json:"potential_value"`
	Priority            domain.LeadPriority `json:"priority"`
	Source              string              `json:"source"`
	AssignedTo          string              `json:"assigned_to"`
	// Confirmed acknowledges a previously flagged duplicate.
	Confirmed bool `json:"confirmed"`
}

type ChangeStatusRequest struct {
	Status      domain.LeadStatus `json:"status" binding:"required"`
	PerformedBy string            `json:"performed_by"`
}

type AppendLogRequest struct {
	Kind    domain.LeadLogKind `json:"kind" binding:"required"`
	Message string             `json:"message" binding:"required"`
}
