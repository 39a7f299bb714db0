package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultEpsilon is the tolerance below which a balance or transfer is
// treated as zero.
var DefaultEpsilon = decimal.New(5, -3)

// Transfer represents a suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

type party struct {
	name      string
	remaining decimal.Decimal // always positive
}

// SuggestTransfers returns the transfers that bring every balance to within
// epsilon of zero.
//
// Greedy matching: debtors are sorted by debt and creditors by credit, both
// largest first; the largest debtor pays the largest creditor
// min(debt, credit), and whichever side is cleared is dropped. Ties keep
// the order of balances, so the result is deterministic. The transfer count
// is small but not guaranteed minimal.
func SuggestTransfers(balances Balances, epsilon decimal.Decimal) []Transfer {
	if epsilon.IsNegative() {
		epsilon = decimal.Zero
	}

	var debtors, creditors []party
	for _, b := range balances {
		if b.Net.Abs().LessThanOrEqual(epsilon) {
			continue
		}
		if b.Net.IsNegative() {
			debtors = append(debtors, party{name: b.Participant, remaining: b.Net.Neg()})
		} else {
			creditors = append(creditors, party{name: b.Participant, remaining: b.Net})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].remaining.GreaterThan(debtors[j].remaining)
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].remaining.GreaterThan(creditors[j].remaining)
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		pay := decimal.Min(debtor.remaining, creditor.remaining)
		if pay.GreaterThan(epsilon) {
			transfers = append(transfers, Transfer{
				From:   debtor.name,
				To:     creditor.name,
				Amount: pay,
			})
		}

		debtor.remaining = debtor.remaining.Sub(pay)
		creditor.remaining = creditor.remaining.Sub(pay)

		if debtor.remaining.LessThanOrEqual(epsilon) {
			i++
		}
		if creditor.remaining.LessThanOrEqual(epsilon) {
			j++
		}
	}

	return transfers
}
