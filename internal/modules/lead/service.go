package lead

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"travelcrm/internal/domain"
)

// Service owns lead lifecycle rules: the status state machine, the soft
// duplicate check on intake, and the append-only timeline.
type Service struct {
	leads Leads
	repo  Repository
	log   zerolog.Logger
}

func NewService(leads Leads, repo Repository, log zerolog.Logger) *Service {
	return &Service{leads: leads, repo: repo, log: log}
}

// CreateResult carries the created lead plus any probable duplicates found
// during intake. Duplicates never block creation unless the caller withholds
// confirmation after being flagged.
type CreateResult struct {
	Lead       domain.Lead   `json:"lead"`
	Duplicates []domain.Lead `json:"duplicates,omitempty"`
}

// CheckDuplicates flags existing leads with the same email (case-insensitive)
// or the same phone after digit normalization.
func (s *Service) CheckDuplicates(ctx context.Context, email, phone string) ([]domain.Lead, error) {
	candidates, err := s.repo.FindDuplicates(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Lead, 0, len(candidates))
	for _, c := range candidates {
		if email != "" && strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(email)) {
			out = append(out, c)
			continue
		}
		if domain.SamePhone(c.Phone, phone) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Create validates and inserts a new lead, flagging probable duplicates in
// the result. confirmed=true skips the flag (the caller already accepted it).
func (s *Service) Create(ctx context.Context, req CreateLeadRequest, confirmed bool) (*CreateResult, error) {
	if strings.TrimSpace(req.Name) == "" || (req.Email == "" && req.Phone == "") {
		return nil, ErrValidation
	}

	var dups []domain.Lead
	if !confirmed {
		var err error
		dups, err = s.CheckDuplicates(ctx, req.Email, req.Phone)
		if err != nil {
			return nil, err
		}
	}

	l := domain.Lead{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.TrimSpace(req.Email),
		Phone:               strings.TrimSpace(req.Phone),
		WhatsApp:            req.WhatsApp,
		WhatsAppSameAsPhone: req.WhatsAppSameAsPhone,
		Destination:         req.Destination,
		TravelStart:         req.TravelStart,
		TravelEnd:           req.TravelEnd,
		Travelers:           req.Travelers,
		PotentialValue:      req.PotentialValue,
		Status:              domain.LeadNew,
		Priority:            req.Priority,
		Source:              req.Source,
		AssignedTo:          req.AssignedTo,
	}
	if l.WhatsAppSameAsPhone {
		l.WhatsApp = l.Phone
	}
	if l.Priority == "" {
		l.Priority = domain.PriorityMedium
	}

	created, err := s.leads.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	return &CreateResult{Lead: created, Duplicates: dups}, nil
}

// ChangeStatus applies one state-machine transition and records it on the
// lead's timeline. The Converted status is only reachable here for direct
// transitions; the conversion workflow owns the full convert path.
func (s *Service) ChangeStatus(ctx context.Context, id int64, to domain.LeadStatus, actor string) (*domain.Lead, error) {
	cur, ok := s.leads.Get(id)
	if !ok {
		if _, err := s.leads.Load(ctx); err != nil {
			return nil, err
		}
		if cur, ok = s.leads.Get(id); !ok {
			return nil, ErrLeadNotFound
		}
	}

	if err := ValidateTransition(cur.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.leads.Update(ctx, id, domain.LeadPatch{Status: &to})
	if err != nil {
		return nil, err
	}

	entry := &domain.LeadLog{
		LeadID:    id,
		Kind:      domain.LogSystem,
		Message:   "Status changed from " + string(cur.Status) + " to " + string(to) + " by " + actor,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		s.log.Error().Err(err).Int64("lead_id", id).Msg("failed to append status log")
	}
	return &updated, nil
}

// AppendLog attaches a timeline entry of the given kind to a lead.
func (s *Service) AppendLog(ctx context.Context, id int64, kind domain.LeadLogKind, message string) (*domain.LeadLog, error) {
	switch kind {
	case domain.LogNote, domain.LogCall, domain.LogEmail, domain.LogQuote, domain.LogSystem, domain.LogWhatsApp:
	default:
		return nil, ErrValidation
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrValidation
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrLeadNotFound
	}
	entry := &domain.LeadLog{LeadID: id, Kind: kind, Message: message, CreatedAt: time.Now().UTC()}
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies a partial edit. Status changes are not allowed through this
// path; they go through ChangeStatus so the state machine always runs.
func (s *Service) Update(ctx context.Context, id int64, p domain.LeadPatch) (*domain.Lead, error) {
	if p.Status != nil {
		return nil, ErrValidation
	}
	updated, err := s.leads.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a lead; explicit admin action only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.leads.Delete(ctx, id)
}

// GetByID returns the lead with its timeline from the authoritative store.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	return l, nil
}

// List returns a page of leads, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *domain.LeadStatus, limit, offset int) ([]domain.Lead, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}
