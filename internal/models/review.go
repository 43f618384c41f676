package models

import "time"

// Review is a consumer's rating of a completed order, one per order.
type Review struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OrderID uint64 `gorm:"not null;uniqueIndex"`                           // Reviewed order.
	Order   *Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // Reviewed order record.

	Rating  int    `gorm:"not null"`  // Score from 1 to 5.
	Comment string `gorm:"type:text"` // Free-form feedback.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// OwnedBy reports whether the user is the consumer behind the reviewed order.
// The Order must be preloaded for a non-admin ownership check.
func (r Review) OwnedBy(userID uint64) bool {
	return r.Order != nil && r.Order.ConsumerID == userID
}
