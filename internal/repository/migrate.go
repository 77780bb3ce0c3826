package repository

import (
	"gorm.io/gorm"

	"travelcrm/internal/domain"
)

// AutoMigrate creates or updates every table the repositories use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&leadModel{},
		&leadLogModel{},
		&customerModel{},
		&bookingModel{},
		&domain.FollowUp{},
		&domain.AuditEntry{},
		&domain.InventoryDay{},
	)
}
