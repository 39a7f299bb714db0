package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

// Trip is a trip and its ordered member list.
type Trip struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Destination string   `json:"destination,omitempty"`
	Currency    string   `json:"currency"`
	Members     []string `json:"members"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"`
}

// Expense is a recorded trip expense.
type Expense struct {
	ID          string          `json:"id"`
	TripID      string          `json:"tripId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	Between     []string        `json:"between"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   int64           `json:"createdAt"`
}

// Payment is a recorded transfer between trip members.
type Payment struct {
	ID        string          `json:"id"`
	TripID    string          `json:"tripId"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt int64           `json:"createdAt"`
}

// PersonShare is one sharer's part of an expense.
type PersonShare struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// MemberBalance is where one participant stands.
// Net > 0 means the participant is owed money; Net < 0 means they owe.
type MemberBalance struct {
	Participant string          `json:"participant"`
	DisplayName string          `json:"displayName,omitempty"`
	Paid        decimal.Decimal `json:"paid"`
	Owed        decimal.Decimal `json:"owed"`
	Net         decimal.Decimal `json:"net"`
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseInput is an unsaved expense, used by PreviewSettlement.
type ExpenseInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	Between     []string        `json:"between"`
}

// PaymentInput is an unsaved payment, used by PreviewSettlement.
type PaymentInput struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
