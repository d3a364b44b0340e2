package core

// Summary is the derived aggregate over a transaction list. All three
// values are exact cents; an empty list yields exact zeros.
type Summary struct {
	Balance      Money
	IncomeTotal  Money
	ExpenseTotal Money
}

// Summarize recomputes the aggregates from the full list. It is a pure
// function of its input: no incremental patching, so a partial-update bug
// in the list can never leave the totals drifting.
func Summarize(txs []Transaction) Summary {
	var income, expense int64
	for _, t := range txs {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
		}
	}
	return Summary{
		Balance:      Money{Cents: income - expense},
		IncomeTotal:  Money{Cents: income},
		ExpenseTotal: Money{Cents: expense},
	}
}
