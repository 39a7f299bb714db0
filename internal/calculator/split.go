package calculator

import (
	"github.com/shopspring/decimal"
)

// PersonShare represents one sharer's part of a single expense.
type PersonShare struct {
	Participant string
	Amount      decimal.Decimal
}

// Expense represents a recorded expense with the minimal information needed
// for balance calculations.
type Expense struct {
	Description string
	Amount      decimal.Decimal
	PaidBy      string
	Between     []string
}

// CalculateSplit divides amount equally among the distinct members of between.
// Every sharer gets amount / |between|, unrounded.
func CalculateSplit(amount decimal.Decimal, between []string) ([]PersonShare, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	sharers := uniqueParticipants(between)
	if len(sharers) == 0 {
		return nil, ErrEmptySharers
	}

	share := equalShare(amount, len(sharers))
	shares := make([]PersonShare, len(sharers))
	for i, p := range sharers {
		shares[i] = PersonShare{Participant: p, Amount: share}
	}
	return shares, nil
}

func equalShare(amount decimal.Decimal, n int) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(int64(n)))
}

// uniqueParticipants drops empty and repeated IDs, keeping first-seen order.
func uniqueParticipants(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
