package core

// Summary aggregates the transactions of a period.
type Summary struct {
	Total             Amount `json:"total"`
	Income            Amount `json:"income"`
	Expense           Amount `json:"expense"`
	TransactionsCount int    `json:"transactions_count"`
}

// Summarize totals txs. Income sums the positive amounts, expense the
// negative ones, so Total == Income + Expense.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		s.Total = s.Total.Add(tx.Amount)
		switch {
		case tx.Amount.IsPositive():
			s.Income = s.Income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			s.Expense = s.Expense.Add(tx.Amount)
		}
		s.TransactionsCount++
	}
	return s
}
