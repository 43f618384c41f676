package models

import "time"

// Offer statuses.
const (
	// OfferAvailable means the offer can still be ordered.
	OfferAvailable = "available"
	// OfferReserved means the remaining quantity is spoken for.
	OfferReserved = "reserved"
	// OfferCollected means the offer has been fully picked up.
	OfferCollected = "collected"
)

// Offer is discounted surplus food published by a merchant.
type Offer struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	MerchantID uint64    `gorm:"not null;index"`                                    // Publishing merchant (user ID).
	Merchant   *Merchant `gorm:"foreignKey:MerchantID;constraint:OnDelete:CASCADE"` // Publishing merchant record.

	CategoryID *uint64   `gorm:"index"`                 // Optional category.
	Category   *Category `gorm:"foreignKey:CategoryID"` // Category record.

	Title       string `gorm:"type:text;not null"` // Short headline.
	Description string `gorm:"type:text"`          // Offer details.
	Photo       string `gorm:"type:text"`          // Photo URL.

	Price             float64 `gorm:"type:decimal(10,2)"` // Unit price.
	AvailableQuantity uint    `gorm:"not null"`           // Units remaining.

	StartDate *time.Time `gorm:"type:date"` // First pickup day, if any.
	EndDate   *time.Time `gorm:"type:date"` // Last pickup day, if any.

	Status string `gorm:"type:text;not null;default:available;index"` // Lifecycle status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// StatusValues lists the accepted offer statuses.
func (Offer) StatusValues() []string {
	return []string{OfferAvailable, OfferReserved, OfferCollected}
}

// CurrentStatus returns the stored status.
func (o Offer) CurrentStatus() string {
	return o.Status
}

// OwnedBy reports whether the user is the publishing merchant.
func (o Offer) OwnedBy(userID uint64) bool {
	return o.MerchantID == userID
}
