package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/money"
)

// HourlyRate is the consulting rate applied to variable modules.
const HourlyRate = money.Money(300_00)

var (
	linearFactors = map[catalog.Complexity]decimal.Decimal{
		catalog.ComplexitySimple:      decimal.NewFromInt(1),
		catalog.ComplexityComplex:     decimal.RequireFromString("1.7"),
		catalog.ComplexityVeryComplex: decimal.RequireFromString("2.9"),
	}
	invertedFactors = map[catalog.Complexity]decimal.Decimal{
		catalog.ComplexitySimple:      decimal.RequireFromString("0.8"),
		catalog.ComplexityComplex:     decimal.NewFromInt(1),
		catalog.ComplexityVeryComplex: decimal.RequireFromString("1.4"),
	}
	sizeFactors = map[catalog.DatabaseSize]decimal.Decimal{
		catalog.DatabaseSmall:  decimal.NewFromInt(1),
		catalog.DatabaseMedium: decimal.RequireFromString("1.5"),
		catalog.DatabaseLarge:  decimal.NewFromInt(2),
	}
)

// Selection carries the configuration of one module. Unset axes are zero values.
type Selection struct {
	Quantity     int
	Complexity   catalog.Complexity
	Services     []string
	DatabaseSize catalog.DatabaseSize
}

// Cost prices a configured module. It is pure and never fails: a module whose
// pricing axis is not configured falls back to its per-unit or flat price.
// Quantity is used as given; callers validate or clamp it first.
func Cost(m catalog.Module, sel Selection) money.Money {
	switch m.Shape {
	case catalog.ShapeServiceSumBySize:
		if len(sel.Services) > 0 {
			var sum money.Money
			for _, id := range sel.Services {
				if svc, ok := m.Service(id); ok {
					sum += svc.Price
				}
			}
			if f, ok := sizeFactors[sel.DatabaseSize]; ok {
				return sum.Mul(f)
			}
			return sum
		}
	case catalog.ShapeServiceCount:
		if n := countKnown(m, sel.Services); n > 0 {
			return m.BaseCost + money.Money(n)*m.PerServiceCost
		}
	case catalog.ShapeComplexityLinear:
		if f, ok := linearFactors[sel.Complexity]; ok {
			return m.BaseCost.Mul(f)
		}
	case catalog.ShapeComplexityInverted:
		if f, ok := invertedFactors[sel.Complexity]; ok {
			return m.BaseCost.Mul(f)
		}
	}
	return general(m, sel.Quantity)
}

func general(m catalog.Module, quantity int) money.Money {
	if !m.HasVariable() {
		return m.BaseCost
	}
	effort := m.Variable.Hours.Mul(decimal.NewFromInt(int64(quantity)))
	return m.BaseCost + HourlyRate.Mul(effort)
}

func countKnown(m catalog.Module, ids []string) int {
	n := 0
	for _, id := range ids {
		if _, ok := m.Service(id); ok {
			n++
		}
	}
	return n
}
