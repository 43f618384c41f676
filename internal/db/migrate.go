package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// Migrate creates or updates the schema for every marketplace entity.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	// Parents before children so foreign keys resolve on first run.
	entities := []any{
		&models.User{},
		&models.PointAccount{},
		&models.Merchant{},
		&models.Consumer{},
		&models.Category{},
		&models.Donation{},
		&models.Offer{},
		&models.Order{},
		&models.Transaction{},
		&models.Review{},
		&models.Notification{},
		&models.Setting{},
	}
	if errMigrate := conn.AutoMigrate(entities...); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}

	return nil
}
