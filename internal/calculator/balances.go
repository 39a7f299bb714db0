package calculator

import (
	"github.com/shopspring/decimal"
)

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	Participant string
	Paid        decimal.Decimal // Expenses paid plus payments sent
	Owed        decimal.Decimal // Expense shares plus payments received
	Net         decimal.Decimal // Positive = owed money, Negative = owes money
}

// Balances is an ordered list of member balances. Order is the participant
// order passed to ComputeBalances followed by unknown participants in the
// order they first appeared.
type Balances []MemberBalance

// Net returns the net balance of participant, or zero if absent.
func (b Balances) Net(participant string) decimal.Decimal {
	for _, m := range b {
		if m.Participant == participant {
			return m.Net
		}
	}
	return decimal.Zero
}

// Map returns the balances as participant -> net balance.
func (b Balances) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for _, m := range b {
		out[m.Participant] = m.Net
	}
	return out
}

// Sum adds up every net balance. It is zero for any valid input, up to
// division precision.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range b {
		sum = sum.Add(m.Net)
	}
	return sum
}

// Payment represents money that already changed hands between participants.
type Payment struct {
	From   string // Who paid (debtor settling up)
	To     string // Who received (creditor being paid)
	Amount decimal.Decimal
}

// ledger accumulates gross credits and debits per participant.
type ledger struct {
	index map[string]int
	rows  Balances
}

func newLedger(participants []string) *ledger {
	l := &ledger{index: make(map[string]int, len(participants))}
	for _, p := range participants {
		l.slot(p)
	}
	return l
}

func fromBalances(balances Balances) *ledger {
	l := &ledger{index: make(map[string]int, len(balances))}
	for _, m := range balances {
		i := l.slot(m.Participant)
		l.rows[i].Paid = l.rows[i].Paid.Add(m.Paid)
		l.rows[i].Owed = l.rows[i].Owed.Add(m.Owed)
	}
	return l
}

func (l *ledger) slot(participant string) int {
	if i, ok := l.index[participant]; ok {
		return i
	}
	l.index[participant] = len(l.rows)
	l.rows = append(l.rows, MemberBalance{
		Participant: participant,
		Paid:        decimal.Zero,
		Owed:        decimal.Zero,
		Net:         decimal.Zero,
	})
	return len(l.rows) - 1
}

func (l *ledger) credit(participant string, amount decimal.Decimal) {
	i := l.slot(participant)
	l.rows[i].Paid = l.rows[i].Paid.Add(amount)
}

func (l *ledger) debit(participant string, amount decimal.Decimal) {
	i := l.slot(participant)
	l.rows[i].Owed = l.rows[i].Owed.Add(amount)
}

func (l *ledger) balances() Balances {
	for i := range l.rows {
		l.rows[i].Net = l.rows[i].Paid.Sub(l.rows[i].Owed)
	}
	return l.rows
}

// ComputeBalances computes every participant's balance from the expense list.
//
// Algorithm:
//   - every participant starts at zero
//   - for each expense the payer is credited the full amount and each
//     distinct sharer is debited amount / |between|
//   - a payer who is also a sharer therefore nets amount - share
//
// Participants referenced by an expense but missing from participants are
// still accounted for. Expenses with a negative amount, no payer or no
// sharers are rejected with an *InvalidExpenseError.
func ComputeBalances(participants []string, expenses []Expense) (Balances, error) {
	l := newLedger(uniqueParticipants(participants))

	for i, e := range expenses {
		if err := checkExpense(e); err != nil {
			return nil, &InvalidExpenseError{Index: i, Description: e.Description, Err: err}
		}

		sharers := uniqueParticipants(e.Between)
		share := equalShare(e.Amount, len(sharers))

		l.credit(e.PaidBy, e.Amount)
		for _, p := range sharers {
			l.debit(p, share)
		}
	}

	return l.balances(), nil
}

func checkExpense(e Expense) error {
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if e.PaidBy == "" {
		return ErrMissingPayer
	}
	if len(uniqueParticipants(e.Between)) == 0 {
		return ErrEmptySharers
	}
	return nil
}

// ApplyPayments folds recorded payments into balances and returns the result.
// The sender's balance improves by the amount and the receiver's decreases.
// Payments missing either end, or sent to oneself, are skipped. The input is
// not modified.
func ApplyPayments(balances Balances, payments []Payment) Balances {
	l := fromBalances(balances)
	for _, p := range payments {
		if p.From == "" || p.To == "" || p.From == p.To {
			continue
		}
		l.credit(p.From, p.Amount)
		l.debit(p.To, p.Amount)
	}
	return l.balances()
}

// Settle computes balances from expenses and payments and suggests the
// transfers that clear them.
func Settle(participants []string, expenses []Expense, payments []Payment, epsilon decimal.Decimal) (Balances, []Transfer, error) {
	balances, err := ComputeBalances(participants, expenses)
	if err != nil {
		return nil, nil, err
	}
	if len(payments) > 0 {
		balances = ApplyPayments(balances, payments)
	}
	return balances, SuggestTransfers(balances, epsilon), nil
}
