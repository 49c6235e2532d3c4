package quote

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/pricing"
)

// exclusiveModules lists pairs that can never be selected together.
var exclusiveModules = [][2]string{
	{"cicd", "gitops"},
}

// Options is the raw configuration submitted for a module. Zero values mean
// "not set"; a zero quantity selects the module default.
type Options struct {
	Quantity     int
	Complexity   string
	Services     []string
	DatabaseSize string
}

// Entry is one configured module in the ledger.
type Entry struct {
	Module    catalog.Module
	Selection pricing.Selection
}

// Ledger is the ordered set of configured modules of one quote session.
// It is not safe for concurrent use; sessions serialize access.
type Ledger struct {
	catalog *catalog.Catalog
	mission catalog.MissionID
	entries []Entry
}

// NewLedger returns an empty ledger bound to the catalog.
func NewLedger(c *catalog.Catalog) *Ledger {
	return &Ledger{catalog: c}
}

// Mission returns the current mission, empty when none is set.
func (l *Ledger) Mission() catalog.MissionID { return l.mission }

// Entries returns the entries in insertion order.
func (l *Ledger) Entries() []Entry { return slices.Clone(l.entries) }

// Len reports the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// SetMission switches the mission and drops entries the new mission does not offer.
func (l *Ledger) SetMission(id catalog.MissionID) error {
	if _, err := l.catalog.Mission(id); err != nil {
		return invalid("mission", "unknown mission %q", id)
	}
	l.mission = id
	l.entries = slices.DeleteFunc(l.entries, func(e Entry) bool {
		return !e.Module.InMission(id)
	})
	return nil
}

// Select validates opts and inserts or updates the module entry. An update
// keeps the entry's original position. On error the ledger is unchanged.
func (l *Ledger) Select(moduleID string, opts Options) error {
	m, err := l.catalog.Module(moduleID)
	if err != nil {
		if errors.Is(err, catalog.ErrModuleNotFound) {
			return invalid("module", "unknown module %q", moduleID)
		}
		return err
	}
	if l.mission != "" && !m.InMission(l.mission) {
		return invalid("module", "%s is not offered in mission %s", m.ID, l.mission)
	}
	sel, err := normalize(m, opts)
	if err != nil {
		return err
	}
	if err := l.checkExclusions(m); err != nil {
		return err
	}

	if idx := l.index(m.ID); idx >= 0 {
		l.entries[idx] = Entry{Module: m, Selection: sel}
		return nil
	}
	l.entries = append(l.entries, Entry{Module: m, Selection: sel})
	return nil
}

// Deselect removes the module; removing an absent module is a no-op.
func (l *Ledger) Deselect(moduleID string) {
	if idx := l.index(moduleID); idx >= 0 {
		l.entries = slices.Delete(l.entries, idx, idx+1)
	}
}

// Reset clears the mission and every entry.
func (l *Ledger) Reset() {
	l.mission = ""
	l.entries = nil
}

// Items returns the entries as pricing input.
func (l *Ledger) Items() []pricing.Item {
	items := make([]pricing.Item, 0, len(l.entries))
	for _, e := range l.entries {
		items = append(items, pricing.Item{Module: e.Module, Selection: e.Selection})
	}
	return items
}

// Total computes the current price breakdown. Nothing is cached; repeated
// calls on an unchanged ledger return identical results.
func (l *Ledger) Total(planID catalog.PlanID, discountPercent decimal.Decimal) (pricing.Breakdown, error) {
	var plan *catalog.Plan
	if planID != "" {
		p, err := l.catalog.Plan(planID)
		if err != nil {
			return pricing.Breakdown{}, invalid("plan", "unknown plan %q", planID)
		}
		plan = &p
	}
	b, err := pricing.Compute(l.Items(), plan, discountPercent)
	if errors.Is(err, pricing.ErrInvalidDiscount) {
		return pricing.Breakdown{}, invalid("discount", "must be between 0 and 100")
	}
	return b, err
}

func (l *Ledger) index(moduleID string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.Module.ID == moduleID })
}

func (l *Ledger) checkExclusions(m catalog.Module) error {
	for _, pair := range exclusiveModules {
		var other string
		switch m.ID {
		case pair[0]:
			other = pair[1]
		case pair[1]:
			other = pair[0]
		default:
			continue
		}
		idx := l.index(other)
		if idx < 0 {
			continue
		}
		return &ConflictError{
			ModuleID:      m.ID,
			ConflictsWith: other,
			Message: fmt.Sprintf("%s and %s cannot be selected together. Remove %s to continue.",
				m.Name, l.entries[idx].Module.Name, l.entries[idx].Module.Name),
		}
	}
	return nil
}

func normalize(m catalog.Module, opts Options) (pricing.Selection, error) {
	minQty, maxQty, def := m.Bounds()
	sel := pricing.Selection{Quantity: opts.Quantity}
	if sel.Quantity == 0 {
		sel.Quantity = def
	}
	if sel.Quantity < minQty || sel.Quantity > maxQty {
		return pricing.Selection{}, invalid("quantity", "%d outside %d..%d", sel.Quantity, minQty, maxQty)
	}

	if opts.Complexity != "" {
		if !m.HasComplexity() {
			return pricing.Selection{}, invalid("complexity", "%s has no complexity tiers", m.ID)
		}
		c, err := catalog.ParseComplexity(opts.Complexity)
		if err != nil {
			return pricing.Selection{}, invalid("complexity", "%s", err.Error())
		}
		sel.Complexity = c
	}

	if len(opts.Services) > 0 {
		if !m.HasServices() {
			return pricing.Selection{}, invalid("services", "%s has no services", m.ID)
		}
		chosen := make(map[string]bool, len(opts.Services))
		for _, id := range opts.Services {
			if _, ok := m.Service(id); !ok {
				return pricing.Selection{}, invalid("services", "unknown service %q", id)
			}
			chosen[id] = true
		}
		// catalog order, duplicates collapsed
		for _, svc := range m.Services {
			if chosen[svc.ID] {
				sel.Services = append(sel.Services, svc.ID)
			}
		}
	}

	if opts.DatabaseSize != "" {
		if !m.HasDatabaseSize() {
			return pricing.Selection{}, invalid("database_size", "%s has no size tiers", m.ID)
		}
		size, err := catalog.ParseDatabaseSize(opts.DatabaseSize)
		if err != nil {
			return pricing.Selection{}, invalid("database_size", "%s", err.Error())
		}
		sel.DatabaseSize = size
	}
	return sel, nil
}
