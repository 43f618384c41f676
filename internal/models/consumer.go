package models

import "time"

// Consumer is the consumer profile attached to a user account.
type Consumer struct {
	UserID uint64 `gorm:"primaryKey"`        // Owning user, one profile per account.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	DeliveryAddress string `gorm:"type:text"` // Preferred delivery address.
	FoodPreferences string `gorm:"type:text"` // Dietary preferences.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
