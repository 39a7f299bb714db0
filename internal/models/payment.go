package models

import "github.com/shopspring/decimal"

// Payment represents a transfer between trip members that already happened.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// TripID is the trip this payment belongs to.
	TripID string

	// From is the member who paid (debtor settling up).
	From string

	// To is the member who received the money (creditor being paid).
	To string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the payment.
	Note string

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
