package models

import "github.com/shopspring/decimal"

// Expense represents money one member paid that is shared equally by
// a set of members.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Description is what the money was spent on (e.g., "Dinner").
	Description string

	// Amount is the total paid.
	Amount decimal.Decimal

	// PaidBy is the member who paid.
	PaidBy string

	// Between is the members sharing the expense equally.
	// The payer may or may not be among them.
	Between []string

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
