package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/nuvme-configurator/internal/common"
	"github.com/noah-isme/nuvme-configurator/internal/money"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	catalog *Catalog
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{catalog: cfg.Catalog}
}

// ModuleView is the wire representation of a module.
type ModuleView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Missions        []MissionID   `json:"missions"`
	Shape           Shape         `json:"pricing_shape"`
	BaseCost        money.Money   `json:"base_cost"`
	BaseCostLabel   string        `json:"base_cost_label"`
	HasComplexity   bool          `json:"has_complexity"`
	HasServices     bool          `json:"has_services"`
	HasDatabaseSize bool          `json:"has_database_size"`
	Variable        *VariableView `json:"variable,omitempty"`
	Services        []Service     `json:"services,omitempty"`
	PerServiceCost  money.Money   `json:"per_service_cost,omitempty"`
}

// VariableView describes quantity bounds for variable modules.
type VariableView struct {
	Hours   float64 `json:"hours_per_unit"`
	Unit    string  `json:"unit"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Default int     `json:"default"`
}

// NewModuleView converts a Module for rendering.
func NewModuleView(m Module) ModuleView {
	view := ModuleView{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Missions:        m.Missions,
		Shape:           m.Shape,
		BaseCost:        m.BaseCost,
		BaseCostLabel:   m.BaseCost.Format(),
		HasComplexity:   m.HasComplexity(),
		HasServices:     m.HasServices(),
		HasDatabaseSize: m.HasDatabaseSize(),
		Services:        m.Services,
		PerServiceCost:  m.PerServiceCost,
	}
	if m.HasVariable() {
		minQty, maxQty, def := m.Bounds()
		view.Variable = &VariableView{
			Hours:   m.Variable.Hours.InexactFloat64(),
			Unit:    m.Variable.Unit,
			Min:     minQty,
			Max:     maxQty,
			Default: def,
		}
	}
	return view
}

// Missions handles GET /api/v1/missions.
func (h *Handler) Missions(w http.ResponseWriter, _ *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.catalog.Missions()})
}

// MissionModules handles GET /api/v1/missions/{id}/modules.
func (h *Handler) MissionModules(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	modules, err := h.catalog.ModulesForMission(MissionID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, NewModuleView(m))
	}
	common.Data(w, http.StatusOK, views)
}

// ModuleDetail handles GET /api/v1/modules/{id}.
func (h *Handler) ModuleDetail(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	m, err := h.catalog.Module(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NewModuleView(m)})
}

// Plans handles GET /api/v1/plans.
func (h *Handler) Plans(w http.ResponseWriter, _ *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.catalog.Plans()})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissionNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "mission not found", nil)
	case errors.Is(err, ErrModuleNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "module not found", nil)
	case errors.Is(err, ErrPlanNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "plan not found", nil)
	default:
		common.WriteError(w, err)
	}
}
