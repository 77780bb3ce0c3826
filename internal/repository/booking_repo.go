package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

// ErrDuplicateReference signals a unique-constraint violation on the booking
// reference code.
var ErrDuplicateReference = errors.New("duplicate booking reference")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	Reference          string     `gorm:"column:reference;uniqueIndex"`
	Type               string     `gorm:"column:type"`
	CustomerID         *int64     `gorm:"column:customer_id;index"`
	LeadID             *int64     `gorm:"column:lead_id;index"`
	Title              string     `gorm:"column:title"`
	Amount             float64    `gorm:"column:amount"`
	TravelDate         time.Time  `gorm:"column:travel_date;index"`
	Pax                int        `gorm:"column:pax"`
	Status             string     `gorm:"column:status;index"`
	PaymentStatus      string     `gorm:"column:payment_status"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) domain.Booking {
	return domain.Booking{
		ID:                 m.ID,
		Reference:          m.Reference,
		Type:               domain.BookingType(m.Type),
		CustomerID:         m.CustomerID,
		LeadID:             m.LeadID,
		Title:              m.Title,
		Amount:             m.Amount,
		TravelDate:         m.TravelDate,
		Pax:                m.Pax,
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		CancellationReason: m.CancellationReason,
		CancelledAt:        m.CancelledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	var models []bookingModel
	if tx := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	var models []bookingModel
	if tx := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at DESC, id DESC").Find(&models); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	now := time.Now().UTC()
	m := bookingModel{
		Reference:     b.Reference,
		Type:          string(b.Type),
		CustomerID:    b.CustomerID,
		LeadID:        b.LeadID,
		Title:         b.Title,
		Amount:        b.Amount,
		TravelDate:    b.TravelDate,
		Pax:           b.Pax,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(tx.Error, &pgErr) && pgErr.Code == "23505" {
			return domain.Booking{}, ErrDuplicateReference
		}
		return domain.Booking{}, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	b := toDomainBooking(m)
	return &b, nil
}

func (r *BookingRepository) Patch(ctx context.Context, id int64, p domain.BookingPatch) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Type != nil {
		updates["type"] = string(*p.Type)
	}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Amount != nil {
		updates["amount"] = *p.Amount
	}
	if p.TravelDate != nil {
		updates["travel_date"] = *p.TravelDate
	}
	if p.Pax != nil {
		updates["pax"] = *p.Pax
	}
	if p.Status != nil {
		updates["status"] = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		updates["payment_status"] = string(*p.PaymentStatus)
	}
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingRepository) Remove(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&bookingModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CancelWithReason moves the booking to Cancelled and records why.
func (r *BookingRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":              string(domain.BookingCancelled),
		"cancellation_reason": reason,
		"cancelled_at":        now,
		"updated_at":          now,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
