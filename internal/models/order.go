package models

import "time"

// Order statuses.
const (
	// OrderPending means the order awaits merchant confirmation.
	OrderPending = "pending"
	// OrderConfirmed means the merchant accepted the order.
	OrderConfirmed = "confirmed"
	// OrderCanceled means the order was called off.
	OrderCanceled = "canceled"
	// OrderCompleted means the order was picked up and settled.
	OrderCompleted = "completed"
)

// Order payment methods.
const (
	// PaymentMomo is a mobile money payment.
	PaymentMomo = "momo"
	// PaymentOther covers any other payment arrangement.
	PaymentOther = "other"
)

// OrderPaymentMethods lists the accepted order payment methods.
func OrderPaymentMethods() []string {
	return []string{PaymentMomo, PaymentOther}
}

// Order is a consumer's purchase of an offer.
type Order struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ConsumerID uint64    `gorm:"not null;index"`                                    // Ordering consumer (user ID).
	Consumer   *Consumer `gorm:"foreignKey:ConsumerID;constraint:OnDelete:CASCADE"` // Ordering consumer record.

	OfferID uint64 `gorm:"not null;index"`                                 // Ordered offer.
	Offer   *Offer `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"` // Ordered offer record.

	Quantity   uint     `gorm:"not null"`           // Units ordered.
	TotalPrice *float64 `gorm:"type:decimal(10,2)"` // Total, defaults to price * quantity.

	Status string `gorm:"type:text;not null;default:pending;index"` // Lifecycle status.

	PickupDate    *time.Time `gorm:"type:date"` // Agreed pickup day, if any.
	PaymentMethod string     `gorm:"type:text"` // Payment method, if chosen.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// StatusValues lists the accepted order statuses.
func (Order) StatusValues() []string {
	return []string{OrderPending, OrderConfirmed, OrderCanceled, OrderCompleted}
}

// CurrentStatus returns the stored status.
func (o Order) CurrentStatus() string {
	return o.Status
}

// OwnedBy reports whether the user is the ordering consumer.
func (o Order) OwnedBy(userID uint64) bool {
	return o.ConsumerID == userID
}
