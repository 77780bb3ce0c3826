package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type leadModel struct {
	ID                  int64      `gorm:"column:id;primaryKey"`
	Name                string     `gorm:"column:name"`
	Email               string     `gorm:"column:email;index"`
	Phone               string     `gorm:"column:phone"`
	PhoneDigits         string     `gorm:"column:phone_digits;index"`
	WhatsApp            string     `gorm:"column:whatsapp"`
	WhatsAppSameAsPhone bool       `gorm:"column:whatsapp_same_as_phone"`
	Destination         string     `gorm:"column:destination"`
	TravelStart         *time.Time `gorm:"column:travel_start"`
	TravelEnd           *time.Time `gorm:"column:travel_end"`
	Travelers           int        `gorm:"column:travelers"`
	PotentialValue      float64    `gorm:"column:potential_value"`
	Status              string     `gorm:"column:status;index"`
	Priority            string     `gorm:"column:priority"`
	Source              string     `gorm:"column:source"`
	AssignedTo          string     `gorm:"column:assigned_to"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (leadModel) TableName() string { return "leads" }

type leadLogModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	LeadID    int64     `gorm:"column:lead_id;index"`
	Kind      string    `gorm:"column:kind"`
	Message   string    `gorm:"column:message;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (leadLogModel) TableName() string { return "lead_logs" }

func toDomainLead(m leadModel) domain.Lead {
	return domain.Lead{
		ID:                  m.ID,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		WhatsApp:            m.WhatsApp,
		WhatsAppSameAsPhone: m.WhatsAppSameAsPhone,
		Destination:         m.Destination,
		TravelStart:         m.TravelStart,
		TravelEnd:           m.TravelEnd,
		Travelers:           m.Travelers,
		PotentialValue:      m.PotentialValue,
		Status:              domain.LeadStatus(m.Status),
		Priority:            domain.LeadPriority(m.Priority),
		Source:              m.Source,
		AssignedTo:          m.AssignedTo,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toLeadModel(l domain.Lead) leadModel {
	return leadModel{
		ID:                  l.ID,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		PhoneDigits:         domain.NormalizePhone(l.Phone),
		WhatsApp:            l.WhatsApp,
		WhatsAppSameAsPhone: l.WhatsAppSameAsPhone,
		Destination:         l.Destination,
		TravelStart:         l.TravelStart,
		TravelEnd:           l.TravelEnd,
		Travelers:           l.Travelers,
		PotentialValue:      l.PotentialValue,
		Status:              string(l.Status),
		Priority:            string(l.Priority),
		Source:              l.Source,
		AssignedTo:          l.AssignedTo,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func toDomainLog(m leadLogModel) domain.LeadLog {
	return domain.LeadLog{
		ID:        m.ID,
		LeadID:    m.LeadID,
		Kind:      domain.LeadLogKind(m.Kind),
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// List returns the whole collection, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	var models []leadModel
	if tx := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Lead, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainLead(m))
	}
	return out, nil
}

// ListByStatus returns a page of leads, optionally filtered by status.
func (r *LeadRepository) ListByStatus(ctx context.Context, status *domain.LeadStatus, limit, offset int) ([]domain.Lead, int64, error) {
	q := r.db.WithContext(ctx).Model(&leadModel{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var total int64
	if tx := q.Count(&total); tx.Error != nil {
		return nil, 0, tx.Error
	}
	var models []leadModel
	if tx := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&models); tx.Error != nil {
		return nil, 0, tx.Error
	}
	out := make([]domain.Lead, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainLead(m))
	}
	return out, total, nil
}

func (r *LeadRepository) Insert(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	m := toLeadModel(l)
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return domain.Lead{}, tx.Error
	}
	return toDomainLead(m), nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var m leadModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	lead := toDomainLead(m)

	var logs []leadLogModel
	if tx := r.db.WithContext(ctx).Where("lead_id = ?", id).Order("created_at ASC, id ASC").Find(&logs); tx.Error != nil {
		return nil, tx.Error
	}
	for _, lm := range logs {
		lead.Logs = append(lead.Logs, toDomainLog(lm))
	}
	return &lead, nil
}

func (r *LeadRepository) Patch(ctx context.Context, id int64, p domain.LeadPatch) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
		updates["phone_digits"] = domain.NormalizePhone(*p.Phone)
	}
	if p.WhatsApp != nil {
		updates["whatsapp"] = *p.WhatsApp
	}
	if p.WhatsAppSameAsPhone != nil {
		updates["whatsapp_same_as_phone"] = *p.WhatsAppSameAsPhone
	}
	if p.Destination != nil {
		updates["destination"] = *p.Destination
	}
	if p.TravelStart != nil {
		updates["travel_start"] = *p.TravelStart
	}
	if p.TravelEnd != nil {
		updates["travel_end"] = *p.TravelEnd
	}
	if p.Travelers != nil {
		updates["travelers"] = *p.Travelers
	}
	if p.PotentialValue != nil {
		updates["potential_value"] = *p.PotentialValue
	}
	if p.Status != nil {
		updates["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		updates["priority"] = string(*p.Priority)
	}
	if p.Source != nil {
		updates["source"] = *p.Source
	}
	if p.AssignedTo != nil {
		updates["assigned_to"] = *p.AssignedTo
	}
	tx := r.db.WithContext(ctx).Model(&leadModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LeadRepository) Remove(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&leadLogModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&leadModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AppendLog writes one immutable timeline entry.
func (r *LeadRepository) AppendLog(ctx context.Context, l *domain.LeadLog) error {
	m := leadLogModel{
		LeadID:    l.LeadID,
		Kind:      string(l.Kind),
		Message:   l.Message,
		CreatedAt: l.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	l.ID = m.ID
	l.CreatedAt = m.CreatedAt
	return nil
}

// FindDuplicates returns existing leads sharing the email (case-insensitive)
// or the digit-normalized phone with the candidate.
func (r *LeadRepository) FindDuplicates(ctx context.Context, email, phone string) ([]domain.Lead, error) {
	emailLower := strings.ToLower(strings.TrimSpace(email))
	digits := domain.NormalizePhone(phone)
	// Suffix match catches country-code variants of the same number; the
	// caller re-checks candidates with domain.SamePhone.
	suffix := digits
	if len(suffix) > 10 {
		suffix = suffix[len(suffix)-10:]
	}

	q := r.db.WithContext(ctx).Model(&leadModel{})
	switch {
	case emailLower != "" && digits != "":
		q = q.Where("LOWER(email) = ? OR phone_digits = ? OR phone_digits LIKE ?", emailLower, digits, "%"+suffix)
	case emailLower != "":
		q = q.Where("LOWER(email) = ?", emailLower)
	case digits != "":
		q = q.Where("phone_digits = ? OR phone_digits LIKE ?", digits, "%"+suffix)
	default:
		return nil, nil
	}

	var models []leadModel
	if tx := q.Order("created_at DESC").Find(&models); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Lead, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainLead(m))
	}
	return out, nil
}
