package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed monetary value. Positive amounts are income, negative
// amounts are expenses. It is encoded as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a float, for tests and literals.
func NewAmount(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// ParseAmount parses a decimal string such as "12.5" or "-3". Surrounding
// whitespace is ignored; anything else that is not a number is rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Decimal: d}, nil
}

// Format renders the amount with exactly two decimal places.
func (a Amount) Format() string {
	return a.StringFixed(2)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}
