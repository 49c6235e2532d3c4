package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/money"
)

var (
	// ErrInvalidDiscount indicates a discount percent outside [0, 100].
	ErrInvalidDiscount = errors.New("pricing: discount must be between 0 and 100 percent")
	// ErrNegativeTotal indicates the computed total dropped below zero.
	ErrNegativeTotal = errors.New("pricing: total cannot be negative")
)

// Currency is the ISO code of every amount produced by the engine.
const Currency = "BRL"

var (
	zeroPercent    = decimal.Zero
	hundredPercent = decimal.NewFromInt(100)
)

// Item is one ledger entry to be priced.
type Item struct {
	Module    catalog.Module
	Selection Selection
}

// Line is a priced ledger entry.
type Line struct {
	ModuleID  string      `json:"module_id"`
	Label     string      `json:"label"`
	Cost      money.Money `json:"cost"`
	CostLabel string      `json:"cost_label"`
	Bundled   bool        `json:"bundled"`
}

// PlanCharge summarises the plan applied to a breakdown.
type PlanCharge struct {
	ID              catalog.PlanID `json:"id"`
	Name            string         `json:"name"`
	SetupFee        money.Money    `json:"setup_fee"`
	MonthlyFee      money.Money    `json:"monthly_fee"`
	IncludedModules int            `json:"included_modules"`
}

// Breakdown is the derived price view of a ledger. It is recomputed on demand.
type Breakdown struct {
	Lines           []Line          `json:"lines"`
	Subtotal        money.Money     `json:"subtotal"`
	Plan            *PlanCharge     `json:"plan,omitempty"`
	PlanAdjusted    money.Money     `json:"plan_adjusted"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  money.Money     `json:"discount_amount"`
	Total           money.Money     `json:"total"`
	TotalLabel      string          `json:"total_label"`
	Currency        string          `json:"currency"`
}

// Subtotal sums line costs.
func Subtotal(lines []Line) money.Money {
	var sum money.Money
	for _, l := range lines {
		sum += l.Cost
	}
	return sum
}

// ApplyPlan charges the plan setup fee plus every line beyond the plan's
// included count, in ledger order. Without a plan it returns the subtotal.
func ApplyPlan(lines []Line, plan *catalog.Plan) money.Money {
	if plan == nil {
		return Subtotal(lines)
	}
	total := plan.SetupPrice
	for i, l := range lines {
		if i >= plan.IncludedModules {
			total += l.Cost
		}
	}
	return total
}

// ApplyDiscount removes percent of amount. Percents outside [0, 100] are rejected.
func ApplyDiscount(amount money.Money, percent decimal.Decimal) (money.Money, error) {
	if percent.LessThan(zeroPercent) || percent.GreaterThan(hundredPercent) {
		return 0, ErrInvalidDiscount
	}
	remaining := hundredPercent.Sub(percent).Div(hundredPercent)
	total := amount.Mul(remaining)
	if total < 0 {
		return 0, ErrNegativeTotal
	}
	return total, nil
}

// Compute prices each item and folds the results through plan and discount.
func Compute(items []Item, plan *catalog.Plan, discountPercent decimal.Decimal) (Breakdown, error) {
	lines := make([]Line, 0, len(items))
	for i, it := range items {
		cost := Cost(it.Module, it.Selection)
		lines = append(lines, Line{
			ModuleID:  it.Module.ID,
			Label:     Describe(it.Module, it.Selection),
			Cost:      cost,
			CostLabel: cost.Format(),
			Bundled:   plan != nil && i < plan.IncludedModules,
		})
	}

	b := Breakdown{
		Lines:           lines,
		Subtotal:        Subtotal(lines),
		PlanAdjusted:    ApplyPlan(lines, plan),
		DiscountPercent: discountPercent,
		Currency:        Currency,
	}
	if plan != nil {
		b.Plan = &PlanCharge{
			ID:              plan.ID,
			Name:            plan.Name,
			SetupFee:        plan.SetupPrice,
			MonthlyFee:      plan.MonthlyPrice,
			IncludedModules: plan.IncludedModules,
		}
	}
	total, err := ApplyDiscount(b.PlanAdjusted, discountPercent)
	if err != nil {
		return Breakdown{}, err
	}
	b.Total = total
	b.DiscountAmount = b.PlanAdjusted - total
	b.TotalLabel = total.Format()
	return b, nil
}

// Describe builds the human readable label of a configured module.
func Describe(m catalog.Module, sel Selection) string {
	var details []string
	switch {
	case m.HasServices() && len(sel.Services) > 0:
		details = append(details, fmt.Sprintf("%d services", len(sel.Services)))
		if m.HasDatabaseSize() && sel.DatabaseSize != "" {
			details = append(details, string(sel.DatabaseSize))
		}
	case m.HasComplexity() && sel.Complexity != "":
		details = append(details, strings.ReplaceAll(string(sel.Complexity), "_", " "))
	case m.HasVariable():
		details = append(details, fmt.Sprintf("%d %s", sel.Quantity, m.Variable.Unit))
	}
	if len(details) == 0 {
		return m.Name
	}
	return m.Name + " (" + strings.Join(details, ", ") + ")"
}
