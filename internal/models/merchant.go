package models

import "time"

// Merchant is the merchant profile attached to a user account.
type Merchant struct {
	UserID uint64 `gorm:"primaryKey"`        // Owning user, one profile per account.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	BusinessName string `gorm:"type:text;not null"` // Legal or trading name.
	BusinessType string `gorm:"type:text"`          // Bakery, restaurant, grocery...
	Address      string `gorm:"type:text"`          // Pickup address.
	Description  string `gorm:"type:text"`          // Public description.
	Phone        string `gorm:"type:text"`          // Contact phone.
	PickupHours  string `gorm:"type:text"`          // Pickup availability window.

	IsVerified    bool    `gorm:"not null;default:false"`                  // Admin verification flag.
	MaxPriceLimit float64 `gorm:"type:decimal(10,2);not null;default:100"` // Max offer price allowed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
