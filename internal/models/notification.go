package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	// NotificationReservation announces a donation reservation.
	NotificationReservation = "reservation"
	// NotificationOrderReady announces an order ready for pickup.
	NotificationOrderReady = "order_ready"
	// NotificationNewOffer announces a newly published offer.
	NotificationNewOffer = "new_offer"
)

// Notification statuses.
const (
	// NotificationSent means the notification is unread.
	NotificationSent = "sent"
	// NotificationRead means the user has seen the notification.
	NotificationRead = "read"
)

// NotificationTypes lists the accepted notification types.
func NotificationTypes() []string {
	return []string{NotificationReservation, NotificationOrderReady, NotificationNewOffer}
}

// Notification is an in-app message delivered to a user.
type Notification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Notified user.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Notified user record.

	Type    string `gorm:"type:text;not null"` // Notification type.
	Message string `gorm:"type:text;not null"` // Rendered message body.

	Metadata datatypes.JSON `gorm:"type:jsonb"` // Optional structured payload.

	Status string `gorm:"type:text;not null;default:sent;index"` // Read status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// StatusValues lists the accepted notification statuses.
func (Notification) StatusValues() []string {
	return []string{NotificationSent, NotificationRead}
}

// CurrentStatus returns the stored status.
func (n Notification) CurrentStatus() string {
	return n.Status
}

// OwnedBy reports whether the user is the notified user.
func (n Notification) OwnedBy(userID uint64) bool {
	return n.UserID == userID
}
