package domain

import "time"

type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "Info"
	SeverityWarning AuditSeverity = "Warning"
)

// AuditEntry is an append-only record of a mutating admin action. Entries are
// never updated or deleted by normal flow.
type AuditEntry struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	Action      string        `json:"action"`
	Module      string        `json:"module"`
	PerformedBy string        `json:"performed_by"`
	Details     string        `json:"details" gorm:"type:text"`
	Severity    AuditSeverity `json:"severity"`
	CreatedAt   time.Time     `json:"created_at"`
}
