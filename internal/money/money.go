package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a BRL amount stored in centavos.
type Money int64

var hundred = decimal.NewFromInt(100)

// BRL converts a whole-real amount into Money.
func BRL(reais int64) Money {
	return Money(reais * 100)
}

// FromDecimal converts a decimal amount of reais, rounding half away from zero to the centavo.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(hundred).Round(0).IntPart())
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Mul scales the amount by factor and rounds to the centavo.
func (m Money) Mul(factor decimal.Decimal) Money {
	return FromDecimal(m.Decimal().Mul(factor))
}

// Format renders the amount the way the sales deck shows it, e.g. "R$ 1.234,56".
func (m Money) Format() string {
	fixed := m.Decimal().StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	b.WriteString("R$ ")
	if negative {
		b.WriteByte('-')
	}
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte('.')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// String implements fmt.Stringer.
func (m Money) String() string { return m.Format() }
