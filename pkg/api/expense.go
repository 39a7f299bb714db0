package api

import "github.com/shopspring/decimal"

type PreviewSettlementRequest struct {
	Participants []string        `json:"participants"`
	Expenses     []*ExpenseInput `json:"expenses"`
	Payments     []*PaymentInput `json:"payments,omitempty"`
	// Epsilon overrides the server's tolerance when set.
	Epsilon *decimal.Decimal `json:"epsilon,omitempty"`
}

type PreviewSettlementResponse struct {
	Balances  []*MemberBalance `json:"balances"`
	Transfers []*Transfer      `json:"transfers"`
}

type AddExpenseRequest struct {
	TripID      string          `json:"tripId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	// Between defaults to every trip member when empty.
	Between []string `json:"between,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense       `json:"expense"`
	Shares  []*PersonShare `json:"shares"`
}

type ListExpensesRequest struct {
	TripID string `json:"tripId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type RecordPaymentRequest struct {
	TripID string          `json:"tripId"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsRequest struct {
	TripID string `json:"tripId"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type DeletePaymentResponse struct{}
