package ui

import (
	"context"

	"ledger/internal/core"
)

// Row is one rendered table row. Edit and Delete are bound to the row's
// transaction, so views never rebuild identifiers from markup.
type Row struct {
	ID          int64
	Date        string
	Category    string
	Description string
	Amount      string

	Edit   func()
	Delete func(ctx context.Context)
}

// SummaryPanel is the rendered summary.
type SummaryPanel struct {
	Total   string
	Income  string
	Expense string
	Count   int
}

// RenderRow renders tx with a two-decimal amount and actions bound to it.
func (c *TransactionClient) RenderRow(tx core.Transaction) Row {
	return Row{
		ID:          tx.ID,
		Date:        tx.Date,
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      tx.Amount.Format(),
		Edit:        func() { c.OpenEdit(tx) },
		Delete:      func(ctx context.Context) { c.DeleteTransaction(ctx, tx.ID) },
	}
}

// SummaryPanelOf formats s with two-decimal monetary fields.
func SummaryPanelOf(s core.Summary) SummaryPanel {
	return SummaryPanel{
		Total:   s.Total.Format(),
		Income:  s.Income.Format(),
		Expense: s.Expense.Format(),
		Count:   s.TransactionsCount,
	}
}
