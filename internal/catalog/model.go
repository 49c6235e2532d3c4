package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/money"
)

// MissionID identifies a top-level engagement category.
type MissionID string

const (
	MissionModernization MissionID = "modernization"
	MissionSecurity      MissionID = "security"
	MissionMigration     MissionID = "migration"
	MissionFinOps        MissionID = "finops"
	MissionNextGen       MissionID = "nextgen"
	MissionTakeoff       MissionID = "takeoff"
)

// Mission is a grouping of modules shown together to the customer.
type Mission struct {
	ID          MissionID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Shape selects the cost formula applied to a module.
type Shape string

const (
	ShapeFlat               Shape = "flat"
	ShapeVariable           Shape = "variable"
	ShapeComplexityLinear   Shape = "complexity_linear"
	ShapeComplexityInverted Shape = "complexity_inverted"
	ShapeServiceCount       Shape = "service_count"
	ShapeServiceSumBySize   Shape = "service_sum_by_size"
)

// Complexity is the project difficulty tier.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// ParseComplexity accepts current tier names plus the legacy easy/moderate aliases.
func ParseComplexity(raw string) (Complexity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "simple", "easy":
		return ComplexitySimple, nil
	case "complex", "moderate":
		return ComplexityComplex, nil
	case "very_complex", "very-complex", "verycomplex":
		return ComplexityVeryComplex, nil
	default:
		return "", fmt.Errorf("unknown complexity %q", raw)
	}
}

// DatabaseSize is the size tier of a managed database engagement.
type DatabaseSize string

const (
	DatabaseSmall  DatabaseSize = "small"
	DatabaseMedium DatabaseSize = "medium"
	DatabaseLarge  DatabaseSize = "large"
)

// ParseDatabaseSize validates a size tier.
func ParseDatabaseSize(raw string) (DatabaseSize, error) {
	switch DatabaseSize(strings.ToLower(strings.TrimSpace(raw))) {
	case DatabaseSmall:
		return DatabaseSmall, nil
	case DatabaseMedium:
		return DatabaseMedium, nil
	case DatabaseLarge:
		return DatabaseLarge, nil
	default:
		return "", fmt.Errorf("unknown database size %q", raw)
	}
}

// Service is an optional sub-offering of a module.
type Service struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Money `json:"price,omitempty"`
}

// Variable describes the per-unit effort of a module, in hours per unit.
type Variable struct {
	Hours   decimal.Decimal
	Unit    string
	Min     int
	Max     int
	Default int
}

const (
	defaultMinQuantity = 1
	defaultMaxQuantity = 100
)

// Module is a purchasable service unit. Values are read-only once loaded.
type Module struct {
	ID             string
	Name           string
	Description    string
	Missions       []MissionID
	Shape          Shape
	BaseCost       money.Money
	Variable       *Variable
	Services       []Service
	PerServiceCost money.Money
}

// InMission reports whether the module is offered under the mission.
func (m Module) InMission(id MissionID) bool {
	return slices.Contains(m.Missions, id)
}

// HasComplexity reports whether a complexity tier drives the price.
func (m Module) HasComplexity() bool {
	return m.Shape == ShapeComplexityLinear || m.Shape == ShapeComplexityInverted
}

// HasServices reports whether selected services drive the price.
func (m Module) HasServices() bool {
	return m.Shape == ShapeServiceCount || m.Shape == ShapeServiceSumBySize
}

// HasDatabaseSize reports whether a size tier multiplies the price.
func (m Module) HasDatabaseSize() bool {
	return m.Shape == ShapeServiceSumBySize
}

// HasVariable reports whether the module is priced per unit.
func (m Module) HasVariable() bool {
	return m.Variable != nil && m.Variable.Hours.IsPositive()
}

// Bounds returns the quantity range and default, applying the 1..100 fallback.
func (m Module) Bounds() (minQty, maxQty, def int) {
	minQty, maxQty = defaultMinQuantity, defaultMaxQuantity
	if m.Variable != nil {
		if m.Variable.Min > 0 {
			minQty = m.Variable.Min
		}
		if m.Variable.Max > 0 {
			maxQty = m.Variable.Max
		}
		def = m.Variable.Default
	}
	if def == 0 {
		def = minQty
	}
	return minQty, maxQty, def
}

// ClampQuantity forces q into the module's quantity range.
func (m Module) ClampQuantity(q int) int {
	minQty, maxQty, _ := m.Bounds()
	return max(minQty, min(q, maxQty))
}

// Service looks up an available service by id.
func (m Module) Service(id string) (Service, bool) {
	for _, svc := range m.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// PlanID identifies a monthly plan tier.
type PlanID string

const (
	PlanTogether  PlanID = "together"
	PlanEssential PlanID = "essential"
	PlanAdvanced  PlanID = "advanced"
	PlanPremier   PlanID = "premier"
)

// Plan is a monthly subscription that bundles the first IncludedModules selections.
type Plan struct {
	ID              PlanID      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	MonthlyPrice    money.Money `json:"monthly_price"`
	SetupPrice      money.Money `json:"setup_price"`
	IncludedModules int         `json:"included_modules"`
}
