package models

import "time"

// Transaction statuses.
const (
	// TransactionPending means the payment is in flight.
	TransactionPending = "pending"
	// TransactionSuccessful means the payment settled.
	TransactionSuccessful = "successful"
	// TransactionFailed means the payment was declined or errored.
	TransactionFailed = "failed"
)

// Transaction payment methods.
const (
	// PaymentStripe is a Stripe card payment.
	PaymentStripe = "stripe"
	// PaymentPayPal is a PayPal payment.
	PaymentPayPal = "paypal"
	// PaymentApplePay is an Apple Pay payment.
	PaymentApplePay = "apple_pay"
	// PaymentGooglePay is a Google Pay payment.
	PaymentGooglePay = "google_pay"
)

// TransactionPaymentMethods lists the accepted transaction payment methods.
func TransactionPaymentMethods() []string {
	return []string{PaymentStripe, PaymentPayPal, PaymentApplePay, PaymentGooglePay}
}

// Transaction records the payment attached to an order, one per order.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OrderID uint64 `gorm:"not null;uniqueIndex"`                           // Paid order.
	Order   *Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // Paid order record.

	Amount        float64 `gorm:"type:decimal(10,2);not null"`              // Charged amount.
	Status        string  `gorm:"type:text;not null;default:pending;index"` // Payment status.
	PaymentMethod string  `gorm:"type:text;not null"`                       // Payment method.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// StatusValues lists the accepted transaction statuses.
func (Transaction) StatusValues() []string {
	return []string{TransactionPending, TransactionSuccessful, TransactionFailed}
}

// CurrentStatus returns the stored status.
func (t Transaction) CurrentStatus() string {
	return t.Status
}

// OwnedBy reports whether the user is the merchant behind the paid order.
// The Order and its Offer must be preloaded for a non-admin ownership check.
func (t Transaction) OwnedBy(userID uint64) bool {
	return t.Order != nil && t.Order.Offer != nil && t.Order.Offer.MerchantID == userID
}
