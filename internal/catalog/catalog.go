package catalog

import (
	"errors"
	"slices"
	"sort"
)

var (
	// ErrMissionNotFound indicates the mission id is not part of the catalog.
	ErrMissionNotFound = errors.New("catalog: mission not found")
	// ErrModuleNotFound indicates the module id is not part of the catalog.
	ErrModuleNotFound = errors.New("catalog: module not found")
	// ErrPlanNotFound indicates the plan id is not part of the catalog.
	ErrPlanNotFound = errors.New("catalog: plan not found")
)

// Catalog is the immutable registry of missions, modules and plans.
type Catalog struct {
	missions []Mission
	modules  []Module
	plans    []Plan

	missionIdx map[MissionID]int
	moduleIdx  map[string]int
	planIdx    map[PlanID]int
}

// modernizationRank orders the modernization mission for presentation.
var modernizationRank = map[string]int{
	"cicd":         1,
	"container":    2,
	"database":     3,
	"gitops":       4,
	"kubernetes":   5,
	"karpenter":    6,
	"arquitetura":  7,
	"faturamento":  8,
	"painel_nuvme": 9,
}

const unrankedModule = 100

// New validates the definitions and builds a Catalog. Any inconsistency is
// reported as a *ConfigurationError.
func New(missions []Mission, modules []Module, plans []Plan) (*Catalog, error) {
	c := &Catalog{
		missions:   slices.Clone(missions),
		modules:    slices.Clone(modules),
		plans:      slices.Clone(plans),
		missionIdx: make(map[MissionID]int, len(missions)),
		moduleIdx:  make(map[string]int, len(modules)),
		planIdx:    make(map[PlanID]int, len(plans)),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default builds the catalog shipped with the service.
func Default() (*Catalog, error) {
	return New(defaultMissions(), defaultModules(), defaultPlans())
}

// MustDefault behaves like Default but panics when the built-in data is inconsistent.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Missions returns every mission in declaration order.
func (c *Catalog) Missions() []Mission {
	return slices.Clone(c.missions)
}

// Mission looks up a mission.
func (c *Catalog) Mission(id MissionID) (Mission, error) {
	idx, ok := c.missionIdx[id]
	if !ok {
		return Mission{}, ErrMissionNotFound
	}
	return c.missions[idx], nil
}

// Modules returns every module in declaration order.
func (c *Catalog) Modules() []Module {
	return slices.Clone(c.modules)
}

// Module looks up a module.
func (c *Catalog) Module(id string) (Module, error) {
	idx, ok := c.moduleIdx[id]
	if !ok {
		return Module{}, ErrModuleNotFound
	}
	return c.modules[idx], nil
}

// ModulesForMission lists the modules offered under a mission. Modernization
// modules follow the presentation rank; other missions keep catalog order.
func (c *Catalog) ModulesForMission(id MissionID) ([]Module, error) {
	if _, ok := c.missionIdx[id]; !ok {
		return nil, ErrMissionNotFound
	}
	out := make([]Module, 0, len(c.modules))
	for _, m := range c.modules {
		if m.InMission(id) {
			out = append(out, m)
		}
	}
	if id == MissionModernization {
		sort.SliceStable(out, func(i, j int) bool {
			return rank(out[i].ID) < rank(out[j].ID)
		})
	}
	return out, nil
}

// Plans returns the monthly plans in declaration order.
func (c *Catalog) Plans() []Plan {
	return slices.Clone(c.plans)
}

// Plan looks up a monthly plan.
func (c *Catalog) Plan(id PlanID) (Plan, error) {
	idx, ok := c.planIdx[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return c.plans[idx], nil
}

func rank(moduleID string) int {
	if r, ok := modernizationRank[moduleID]; ok {
		return r
	}
	return unrankedModule
}
