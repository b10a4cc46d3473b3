// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Decimal strings coming from users or
// from the record store are parsed with shopspring/decimal and rounded
// half-up to the cent.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount the backend column can hold (10 digits, 2 decimals).
var MaxAmount = Money{Cents: 99_999_999_99}

// Money is an amount in cents.
type Money struct {
	Cents int64
}

// ParseDecimal parses a decimal string, accepting both dot (12.34) and
// comma (12,34) separators. Negative values are returned as such.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. Negative amounts are rejected.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents
//	ParseMoney("0")      -> 0 cents
func ParseMoney(s string) (Money, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to the cent. Values beyond MaxAmount in either
// direction are rejected before conversion so they cannot overflow int64.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	rounded := d.Round(2)
	if rounded.Abs().GreaterThan(MaxAmount.Decimal()) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: rounded.Shift(2).IntPart()}, nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with exactly two decimals, e.g. "15.99".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float64 returns the value for display and ratio purposes.
// Use cents for calculations.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	if m.Cents > MaxAmount.Cents {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON writes the amount as a decimal string, the form the backend uses.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both a decimal string ("12.50") and a JSON number (12.5).
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAmount
		}
	}
	d, err := ParseDecimal(raw)
	if err != nil {
		return err
	}
	parsed, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
