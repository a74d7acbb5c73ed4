// Package core holds the ledger domain types shared by the client, the web
// frontend and the reference backend.
package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date format accepted on the wire.
const DateLayout = "2006-01-02"

type (
	// Transaction is one ledger entry as returned by the backend.
	Transaction struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      Amount `json:"amount"`
	}

	// TransactionInput is the body of a create or update request.
	TransactionInput struct {
		Date        string `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      Amount `json:"amount"`
	}

	// TransactionPatch is a partial update; nil fields are left untouched.
	TransactionPatch struct {
		Date        *string `json:"date"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		Amount      *Amount `json:"amount"`
	}

	// Filter narrows a transaction listing. Empty fields do not filter.
	Filter struct {
		StartDate string
		EndDate   string
		Category  string
	}

	// Period selects the transactions a summary is computed over.
	Period struct {
		Year  string
		Month string
	}
)

var (
	ErrInvalidDate      = errors.New("Invalid date format. Use YYYY-MM-DD.")
	ErrNotFound         = errors.New("Transaction not found.")
	ErrInvalidID        = errors.New("Invalid transaction id.")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
)

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Validate checks what the backend enforces on writes: a well-formed date.
// Category, description and amount sign are free-form.
func (in TransactionInput) Validate() error {
	if _, err := ParseDate(in.Date); err != nil {
		return err
	}
	return nil
}

// Apply merges the non-nil fields of p into tx.
func (p TransactionPatch) Apply(tx Transaction) (Transaction, error) {
	if p.Date != nil {
		d, err := ParseDate(*p.Date)
		if err != nil {
			return tx, err
		}
		tx.Date = d.Format(DateLayout)
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	return tx, nil
}

// Matches reports whether tx passes the filter. Category is compared
// case-insensitively and dates are inclusive bounds; a bound that does not
// parse is ignored.
func (f Filter) Matches(tx Transaction) bool {
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(tx.Category, c) {
		return false
	}
	d, err := ParseDate(tx.Date)
	if err != nil {
		return true
	}
	if sd, err := ParseDate(f.StartDate); err == nil && d.Before(sd) {
		return false
	}
	if ed, err := ParseDate(f.EndDate); err == nil && d.After(ed) {
		return false
	}
	return true
}

// Matches reports whether tx falls in the period. Year or month values that
// are not integers are ignored.
func (p Period) Matches(tx Transaction) bool {
	d, err := ParseDate(tx.Date)
	if err != nil {
		return false
	}
	if y, err := strconv.Atoi(strings.TrimSpace(p.Year)); err == nil && d.Year() != y {
		return false
	}
	if m, err := strconv.Atoi(strings.TrimSpace(p.Month)); err == nil && int(d.Month()) != m {
		return false
	}
	return true
}
