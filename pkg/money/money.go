// Package money formats and sums statement amounts as Brazilian reais,
// keeping arithmetic on integer centavos.
package money

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the ISO-4217 code for the Brazilian real.
const BRL = "BRL"

// Amount is a monetary value in reais.
type Amount struct {
	m *money.Money
}

// New creates an Amount from centavos.
func New(centavos int64) Amount {
	return Amount{m: money.New(centavos, BRL)}
}

// NewFromDecimal creates an Amount from a decimal value in reais.
func NewFromDecimal(d decimal.Decimal) Amount {
	centavos := d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return New(centavos)
}

// Zero returns a zero Amount.
func Zero() Amount {
	return New(0)
}

// Centavos returns the value in minor units.
func (a Amount) Centavos() int64 {
	if a.m == nil {
		return 0
	}
	return a.m.Amount()
}

// ToDecimal returns the value in reais.
func (a Amount) ToDecimal() decimal.Decimal {
	return decimal.New(a.Centavos(), -2)
}

// Add sums two amounts.
func (a Amount) Add(other Amount) Amount {
	if a.m == nil {
		return other
	}
	if other.m == nil {
		return a
	}
	sum, err := a.m.Add(other.m)
	if err != nil {
		// both sides are always BRL
		panic(fmt.Sprintf("money: add failed: %v", err))
	}
	return Amount{m: sum}
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a.m == nil {
		return Zero()
	}
	return Amount{m: a.m.Absolute()}
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.m == nil || a.m.IsZero()
}

// Display formats the amount with the R$ symbol and Brazilian separators,
// e.g. "R$1.234,56".
func (a Amount) Display() string {
	if a.m == nil {
		return money.New(0, BRL).Display()
	}
	return a.m.Display()
}

// String returns the plain decimal form, e.g. "1234.56".
func (a Amount) String() string {
	return a.ToDecimal().StringFixed(2)
}
