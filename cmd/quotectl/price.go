package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/pricing"
	"github.com/noah-isme/nuvme-configurator/internal/quote"
)

type selection struct {
	moduleID string
	opts     quote.Options
}

// parseSelection reads id[:qty=N][,complexity=T][,services=a|b][,db=S].
func parseSelection(raw string) (selection, error) {
	id, rest, _ := strings.Cut(strings.TrimSpace(raw), ":")
	if id == "" {
		return selection{}, fmt.Errorf("selection %q: module id is required", raw)
	}
	sel := selection{moduleID: id}
	if rest == "" {
		return sel, nil
	}
	for _, part := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return selection{}, fmt.Errorf("selection %q: expected key=value, got %q", raw, part)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "qty", "quantity":
			n, err := strconv.Atoi(value)
			if err != nil {
				return selection{}, fmt.Errorf("selection %q: quantity %q is not a number", raw, value)
			}
			sel.opts.Quantity = n
		case "complexity":
			sel.opts.Complexity = value
		case "services":
			for _, s := range strings.Split(value, "|") {
				if s = strings.TrimSpace(s); s != "" {
					sel.opts.Services = append(sel.opts.Services, s)
				}
			}
		case "db", "database_size":
			sel.opts.DatabaseSize = value
		default:
			return selection{}, fmt.Errorf("selection %q: unknown option %q", raw, key)
		}
	}
	return sel, nil
}

func parseDiscount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("discount %q is not a number", raw)
	}
	return d, nil
}

type priceOptions struct {
	mission  string
	selects  []string
	plan     string
	discount string
	format   string
}

func newPriceCmd() *cobra.Command {
	var o priceOptions
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a selection of modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := price(o)
			if err != nil {
				return err
			}
			return renderBreakdown(cmd, b, o.format)
		},
	}
	cmd.Flags().StringVarP(&o.mission, "mission", "m", "", "mission id; restricts selectable modules")
	cmd.Flags().StringArrayVarP(&o.selects, "select", "s", nil, "module selection id[:qty=N][,complexity=T][,services=a|b][,db=S]")
	cmd.Flags().StringVarP(&o.plan, "plan", "p", "", "support plan id")
	cmd.Flags().StringVarP(&o.discount, "discount", "d", "", "discount percent, e.g. 10 or 12.5%")
	cmd.Flags().StringVarP(&o.format, "format", "f", "table", "output format (table, json)")
	return cmd
}

func price(o priceOptions) (pricing.Breakdown, error) {
	if o.format != "table" && o.format != "json" {
		return pricing.Breakdown{}, fmt.Errorf("unknown format %q", o.format)
	}
	c, err := catalog.Default()
	if err != nil {
		return pricing.Breakdown{}, err
	}
	l := quote.NewLedger(c)
	if o.mission != "" {
		if err := l.SetMission(catalog.MissionID(o.mission)); err != nil {
			return pricing.Breakdown{}, err
		}
	}
	for _, raw := range o.selects {
		sel, err := parseSelection(raw)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		if err := l.Select(sel.moduleID, sel.opts); err != nil {
			return pricing.Breakdown{}, err
		}
	}
	discount, err := parseDiscount(o.discount)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return l.Total(catalog.PlanID(o.plan), discount)
}

func renderBreakdown(cmd *cobra.Command, b pricing.Breakdown, format string) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, b)
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "MODULE\tCOST")
	for _, line := range b.Lines {
		label := line.Label
		if line.Bundled {
			label += " (bundled)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, line.CostLabel)
	}
	fmt.Fprintf(tw, "Subtotal\t%s\n", b.Subtotal.Format())
	if b.Plan != nil {
		fmt.Fprintf(tw, "Plan %s\t%s\n", b.Plan.Name, b.PlanAdjusted.Format())
	}
	if !b.DiscountPercent.IsZero() {
		fmt.Fprintf(tw, "Discount %s%%\t-%s\n", b.DiscountPercent.String(), b.DiscountAmount.Format())
	}
	fmt.Fprintf(tw, "Total\t%s\n", b.TotalLabel)
	return tw.Flush()
}
