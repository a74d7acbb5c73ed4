package ui

import (
	"strings"

	"ledger/internal/core"
)

// Fields are the raw values of the add or edit form.
type Fields struct {
	Date        string
	Category    string
	Description string
	Amount      string
}

// Input checks that date, category and description are present and that
// amount is a number. Date format and amount sign are left to the backend.
func (f Fields) Input() (core.TransactionInput, error) {
	date := strings.TrimSpace(f.Date)
	if date == "" {
		return core.TransactionInput{}, core.ErrInvalidDate
	}
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return core.TransactionInput{}, core.ErrEmptyCategory
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return core.TransactionInput{}, core.ErrEmptyDescription
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, err
	}
	return core.TransactionInput{
		Date:        date,
		Category:    category,
		Description: description,
		Amount:      amount,
	}, nil
}

// FieldsOf pre-fills a form from tx.
func FieldsOf(tx core.Transaction) Fields {
	return Fields{
		Date:        tx.Date,
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      tx.Amount.String(),
	}
}
