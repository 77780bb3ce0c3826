package domain

import "time"

type FollowUpType string

const (
	FollowUpCall     FollowUpType = "Call"
	FollowUpEmail    FollowUpType = "Email"
	FollowUpWhatsApp FollowUpType = "WhatsApp"
	FollowUpMeeting  FollowUpType = "Meeting"
)

type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "Pending"
	FollowUpDone      FollowUpStatus = "Done"
	FollowUpCancelled FollowUpStatus = "Cancelled"
)

// FollowUp reminds an agent to re-contact a lead. Completion and cancellation
// are explicit agent actions; nothing transitions a follow-up automatically.
type FollowUp struct {
	ID          int64          `json:"id"`
	LeadID      int64          `json:"lead_id"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Type        FollowUpType   `json:"type"`
	Priority    LeadPriority   `json:"priority"`
	Status      FollowUpStatus `json:"status"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (f FollowUp) EntityID() int64 { return f.ID }

// IsOverdue reports whether the scheduled time is strictly before now.
func (f FollowUp) IsOverdue(now time.Time) bool {
	return f.ScheduledAt.Before(now)
}

// IsDueToday reports whether the scheduled date equals today's date,
// regardless of time of day.
func (f FollowUp) IsDueToday(now time.Time) bool {
	fy, fm, fd := f.ScheduledAt.Date()
	ny, nm, nd := now.Date()
	return fy == ny && fm == nm && fd == nd
}
