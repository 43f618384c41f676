package models

import "time"

// Category groups offers, optionally nested under a parent category.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null;uniqueIndex"` // Unique display name.
	Description string `gorm:"type:text"`                      // Optional description.

	ParentID *uint64   `gorm:"index"`               // Parent category, nil for roots.
	Parent   *Category `gorm:"foreignKey:ParentID"` // Parent record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
