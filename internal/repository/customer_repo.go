package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	Name           string    `gorm:"column:name"`
	Email          string    `gorm:"column:email;index"`
	Phone          string    `gorm:"column:phone"`
	PhoneDigits    string    `gorm:"column:phone_digits;index"`
	Classification string    `gorm:"column:classification"`
	BookingsCount  int       `gorm:"column:bookings_count"`
	TotalSpent     float64   `gorm:"column:total_spent"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (customerModel) TableName() string { return "customers" }

func toDomainCustomer(m customerModel) domain.Customer {
	return domain.Customer{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Classification: domain.CustomerClass(m.Classification),
		BookingsCount:  m.BookingsCount,
		TotalSpent:     m.TotalSpent,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var models []customerModel
	if tx := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Customer, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainCustomer(m))
	}
	return out, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	now := time.Now().UTC()
	m := customerModel{
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		PhoneDigits:    domain.NormalizePhone(c.Phone),
		Classification: string(c.Classification),
		BookingsCount:  c.BookingsCount,
		TotalSpent:     c.TotalSpent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if m.Classification == "" {
		m.Classification = string(domain.CustomerNew)
	}
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return domain.Customer{}, tx.Error
	}
	return toDomainCustomer(m), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var m customerModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	c := toDomainCustomer(m)
	return &c, nil
}

func (r *CustomerRepository) Patch(ctx context.Context, id int64, p domain.CustomerPatch) error {
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
	if p.Classification != nil {
		updates["classification"] = string(*p.Classification)
	}
	if p.BookingsCount != nil {
		updates["bookings_count"] = *p.BookingsCount
	}
	if p.TotalSpent != nil {
		updates["total_spent"] = *p.TotalSpent
	}
	tx := r.db.WithContext(ctx).Model(&customerModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CustomerRepository) Remove(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&customerModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByEmail matches case-insensitively.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var m customerModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at ASC").
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	c := toDomainCustomer(m)
	return &c, nil
}

// FindByPhone matches on normalized digits, so formatting in either the
// stored phone or the query does not matter.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	digits := domain.NormalizePhone(phone)
	if digits == "" {
		return nil, nil
	}
	var m customerModel
	tx := r.db.WithContext(ctx).Where("phone_digits = ?", digits).Order("created_at ASC").First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	c := toDomainCustomer(m)
	return &c, nil
}
