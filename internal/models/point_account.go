package models

import "time"

// PointAccount holds a user's loyalty point balance.
// One row per user; the balance changes only through ledger operations.
type PointAccount struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user.
	User   *User  `gorm:"foreignKey:UserID"`    // Owning user record.

	Balance int64 `gorm:"not null;default:0"` // Current balance, never negative.

	LastUpdated time.Time `gorm:"not null;autoUpdateTime"` // Last mutation timestamp.
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// TableName overrides the default table name.
func (PointAccount) TableName() string {
	return "points"
}
