package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySharers       = errors.New("expense must be shared by at least one participant")
	ErrNegativeAmount     = errors.New("expense amount cannot be negative")
	ErrNonPositiveAmount  = errors.New("expense amount must be positive")
	ErrMissingPayer       = errors.New("expense must have a payer")
	ErrMissingDescription = errors.New("expense must have a description")
	ErrUnknownParticipant = errors.New("unknown participant")
)

// InvalidExpenseError reports which expense failed validation and why.
// Use errors.Is on it to match the underlying sentinel.
type InvalidExpenseError struct {
	Index       int
	Description string
	Err         error
}

func (e *InvalidExpenseError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("invalid expense #%d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("invalid expense #%d (%q): %v", e.Index, e.Description, e.Err)
}

func (e *InvalidExpenseError) Unwrap() error {
	return e.Err
}

// ValidateExpense applies the strict checks used before an expense is
// persisted: positive amount, a description, and a payer and sharers that
// all belong to members.
func ValidateExpense(expense Expense, members []string) error {
	if expense.Description == "" {
		return ErrMissingDescription
	}
	if !expense.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if expense.PaidBy == "" {
		return ErrMissingPayer
	}
	if len(uniqueParticipants(expense.Between)) == 0 {
		return ErrEmptySharers
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m] = true
	}
	if !known[expense.PaidBy] {
		return fmt.Errorf("%w: payer %q", ErrUnknownParticipant, expense.PaidBy)
	}
	for _, p := range expense.Between {
		if p != "" && !known[p] {
			return fmt.Errorf("%w: sharer %q", ErrUnknownParticipant, p)
		}
	}
	return nil
}
