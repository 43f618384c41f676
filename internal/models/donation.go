package models

import "time"

// Donation statuses.
const (
	// DonationAvailable means the donation is open for reservation.
	DonationAvailable = "available"
	// DonationReserved means a recipient has been bound to the donation.
	DonationReserved = "reserved"
	// DonationCollected means the recipient has picked the donation up.
	DonationCollected = "collected"
)

// Donation is a free food item offered by a donor to recipients.
type Donation struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	DonorID uint64 `gorm:"not null;index"`                                 // Donating user.
	Donor   *User  `gorm:"foreignKey:DonorID;constraint:OnDelete:CASCADE"` // Donating user record.

	RecipientID *uint64 `gorm:"index"`                                               // Receiving user, nil while available.
	Recipient   *User   `gorm:"foreignKey:RecipientID;constraint:OnDelete:SET NULL"` // Receiving user record.

	Title       string `gorm:"type:text;not null"` // Short headline.
	Description string `gorm:"type:text"`          // Item details.
	Photo       string `gorm:"type:text"`          // Photo URL.

	Status string `gorm:"type:text;not null;default:available;index"` // Lifecycle status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// StatusValues lists the accepted donation statuses.
func (Donation) StatusValues() []string {
	return []string{DonationAvailable, DonationReserved, DonationCollected}
}

// CurrentStatus returns the stored status.
func (d Donation) CurrentStatus() string {
	return d.Status
}

// OwnedBy reports whether the user is the donor or the bound recipient.
func (d Donation) OwnedBy(userID uint64) bool {
	if d.DonorID == userID {
		return true
	}
	return d.RecipientID != nil && *d.RecipientID == userID
}

// AllowTransition encodes the one-way donation machine. Moving out of
// "available" is reserved for the reservation workflow, and nothing returns
// to "available" once reserved.
func (Donation) AllowTransition(from, to string) bool {
	return from == DonationReserved && to == DonationCollected
}
