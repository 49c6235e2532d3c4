package catalog

import (
	"fmt"
	"strings"
)

// ConfigurationError lists every inconsistency found while loading catalog data.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "catalog: invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (c *Catalog) validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, ms := range c.missions {
		if ms.ID == "" {
			addf("mission #%d has no id", i)
			continue
		}
		if _, dup := c.missionIdx[ms.ID]; dup {
			addf("mission %s declared twice", ms.ID)
			continue
		}
		c.missionIdx[ms.ID] = i
	}

	for i, m := range c.modules {
		if m.ID == "" {
			addf("module #%d has no id", i)
			continue
		}
		if _, dup := c.moduleIdx[m.ID]; dup {
			addf("module %s declared twice", m.ID)
			continue
		}
		c.moduleIdx[m.ID] = i
		for _, p := range validateModule(m, c.missionIdx) {
			addf("module %s: %s", m.ID, p)
		}
	}

	for i, p := range c.plans {
		switch {
		case p.ID == "":
			addf("plan #%d has no id", i)
			continue
		case p.MonthlyPrice < 0 || p.SetupPrice < 0:
			addf("plan %s has a negative price", p.ID)
		case p.IncludedModules < 0:
			addf("plan %s has a negative included module count", p.ID)
		}
		if _, dup := c.planIdx[p.ID]; dup {
			addf("plan %s declared twice", p.ID)
			continue
		}
		c.planIdx[p.ID] = i
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func validateModule(m Module, missions map[MissionID]int) []string {
	var problems []string
	if len(m.Missions) == 0 {
		problems = append(problems, "no missions")
	}
	for _, id := range m.Missions {
		if _, ok := missions[id]; !ok {
			problems = append(problems, fmt.Sprintf("unknown mission %s", id))
		}
	}
	if m.BaseCost < 0 {
		problems = append(problems, "negative base cost")
	}
	if v := m.Variable; v != nil {
		if v.Hours.IsNegative() {
			problems = append(problems, "negative variable factor")
		}
		minQty, maxQty, def := m.Bounds()
		if minQty > maxQty {
			problems = append(problems, fmt.Sprintf("inverted bounds %d..%d", minQty, maxQty))
		} else if def < minQty || def > maxQty {
			problems = append(problems, fmt.Sprintf("default %d outside %d..%d", def, minQty, maxQty))
		}
	}

	switch m.Shape {
	case ShapeFlat:
	case ShapeVariable:
		if !m.HasVariable() {
			problems = append(problems, "variable shape without a variable factor")
		}
	case ShapeComplexityLinear, ShapeComplexityInverted:
		if len(m.Services) > 0 {
			problems = append(problems, "complexity shape cannot carry services")
		}
	case ShapeServiceCount:
		if len(m.Services) == 0 {
			problems = append(problems, "service shape without services")
		}
		if m.PerServiceCost <= 0 {
			problems = append(problems, "service count shape without a per-service cost")
		}
	case ShapeServiceSumBySize:
		if len(m.Services) == 0 {
			problems = append(problems, "service shape without services")
		}
		for _, svc := range m.Services {
			if svc.Price <= 0 {
				problems = append(problems, fmt.Sprintf("service %s has no price", svc.ID))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown pricing shape %q", m.Shape))
	}

	seen := make(map[string]struct{}, len(m.Services))
	for _, svc := range m.Services {
		if _, dup := seen[svc.ID]; dup || svc.ID == "" {
			problems = append(problems, fmt.Sprintf("service id %q empty or duplicated", svc.ID))
		}
		seen[svc.ID] = struct{}{}
	}
	return problems
}
