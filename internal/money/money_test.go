package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := map[Money]string{
		0:            "R$ 0,00",
		5:            "R$ 0,05",
		BRL(300):     "R$ 300,00",
		BRL(1000):    "R$ 1.000,00",
		123456:       "R$ 1.234,56",
		BRL(1234567): "R$ 1.234.567,00",
		-123456:      "R$ -1.234,56",
	}
	for in, want := range cases {
		require.Equal(t, want, in.Format(), "format %d", int64(in))
	}
}

func TestMulRoundsToCentavo(t *testing.T) {
	require.Equal(t, BRL(20880), BRL(7200).Mul(decimal.RequireFromString("2.9")))
	require.Equal(t, Money(2), Money(1).Mul(decimal.RequireFromString("1.5")))
	require.Equal(t, Money(-2), Money(-1).Mul(decimal.RequireFromString("1.5")))
}

func TestFromDecimal(t *testing.T) {
	require.Equal(t, Money(1235), FromDecimal(decimal.RequireFromString("12.345")))
	require.Equal(t, BRL(9), FromDecimal(decimal.NewFromInt(9)))
}
