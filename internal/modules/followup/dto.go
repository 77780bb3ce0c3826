package followup

import (
	"time"

	"travelcrm/internal/domain"
)

type CreateFollowUpRequest struct {
	LeadID      int64               `json:"lead_id" binding:"required"`
	ScheduledAt time.Time           `json:"scheduled_at" binding:"required"`
	Type        domain.FollowUpType `json:"type" binding:"required"`
	Priority    domain.LeadPriority `json:"priority"`
	Description string              `json:"description"`
}
