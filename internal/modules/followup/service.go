package followup

import (
	"context"
	"sort"
	"time"

	"travelcrm/internal/domain"
)

// Repository is the follow-up store.
type Repository interface {
	Create(ctx context.Context, f *domain.FollowUp) error
	GetByID(ctx context.Context, id int64) (*domain.FollowUp, error)
	ListPending(ctx context.Context) ([]domain.FollowUp, error)
	ListByLead(ctx context.Context, leadID int64) ([]domain.FollowUp, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FollowUpStatus) error
}

// LeadChecker verifies the owning lead exists.
type LeadChecker interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
}

// Service schedules and ranks follow-up tasks. Nothing here transitions a
// task automatically; Done and Cancelled are explicit agent actions.
type Service struct {
	repo  Repository
	leads LeadChecker
}

func NewService(repo Repository, leads LeadChecker) *Service {
	return &Service{repo: repo, leads: leads}
}

var priorityWeight = map[domain.LeadPriority]int{
	domain.PriorityHigh:   3,
	domain.PriorityMedium: 2,
	domain.PriorityLow:    1,
}

// Rank orders tasks by priority descending, tie-broken by ascending
// scheduled time. The input slice is not modified.
func Rank(tasks []domain.FollowUp) []domain.FollowUp {
	out := make([]domain.FollowUp, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := priorityWeight[out[i].Priority], priorityWeight[out[j].Priority]
		if wi != wj {
			return wi > wj
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func (s *Service) Create(ctx context.Context, req CreateFollowUpRequest) (*domain.FollowUp, error) {
	switch req.Type {
	case domain.FollowUpCall, domain.FollowUpEmail, domain.FollowUpWhatsApp, domain.FollowUpMeeting:
	default:
		return nil, ErrValidation
	}
	if req.ScheduledAt.IsZero() {
		return nil, ErrValidation
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}
	if _, ok := priorityWeight[req.Priority]; !ok {
		return nil, ErrValidation
	}

	l, err := s.leads.GetByID(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}

	f := &domain.FollowUp{
		LeadID:      req.LeadID,
		ScheduledAt: req.ScheduledAt,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      domain.FollowUpPending,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Agenda buckets pending tasks for the agent's day view, each bucket ranked.
type Agenda struct {
	Overdue  []domain.FollowUp `json:"overdue"`
	DueToday []domain.FollowUp `json:"due_today"`
	Upcoming []domain.FollowUp `json:"upcoming"`
}

func (s *Service) Agenda(ctx context.Context, now time.Time) (*Agenda, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	agenda := &Agenda{}
	for _, f := range Rank(pending) {
		switch {
		case f.IsDueToday(now):
			agenda.DueToday = append(agenda.DueToday, f)
		case f.IsOverdue(now):
			agenda.Overdue = append(agenda.Overdue, f)
		default:
			agenda.Upcoming = append(agenda.Upcoming, f)
		}
	}
	return agenda, nil
}

func (s *Service) Complete(ctx context.Context, id int64) (*domain.FollowUp, error) {
	return s.close(ctx, id, domain.FollowUpDone)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*domain.FollowUp, error) {
	return s.close(ctx, id, domain.FollowUpCancelled)
}

func (s *Service) close(ctx context.Context, id int64, status domain.FollowUpStatus) (*domain.FollowUp, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	if f.Status != domain.FollowUpPending {
		return nil, ErrNotPending
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	f.Status = status
	return f, nil
}

func (s *Service) ListByLead(ctx context.Context, leadID int64) ([]domain.FollowUp, error) {
	return s.repo.ListByLead(ctx, leadID)
}
