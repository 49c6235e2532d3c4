package quote

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/common"
	"github.com/noah-isme/nuvme-configurator/internal/repo"
)

// Handler exposes quote session endpoints.
type Handler struct {
	Service *Service
}

type missionRequest struct {
	Mission string `json:"mission" validate:"required"`
}

type selectRequest struct {
	Quantity     int      `json:"quantity" validate:"gte=0"`
	Complexity   string   `json:"complexity" validate:"omitempty,max=32"`
	Services     []string `json:"services" validate:"omitempty,max=32,dive,required"`
	DatabaseSize string   `json:"database_size" validate:"omitempty,max=32"`
}

type saveRequest struct {
	Plan     string          `json:"plan" validate:"omitempty,max=32"`
	Discount decimal.Decimal `json:"discount"`
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	q, err := h.Service.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/quotes/"+q.ID)
	common.Data(w, http.StatusCreated, q)
}

// Get handles GET /api/v1/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	q, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// SetMission handles PUT /api/v1/quotes/{id}/mission.
func (h *Handler) SetMission(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req missionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	mission := catalog.MissionID(strings.ToLower(strings.TrimSpace(req.Mission)))
	q, err := h.Service.SetMission(r.Context(), chi.URLParam(r, "id"), mission)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// SelectModule handles PUT /api/v1/quotes/{id}/modules/{moduleId}.
func (h *Handler) SelectModule(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req selectRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.Service.Select(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"), Options{
		Quantity:     req.Quantity,
		Complexity:   req.Complexity,
		Services:     req.Services,
		DatabaseSize: req.DatabaseSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// DeselectModule handles DELETE /api/v1/quotes/{id}/modules/{moduleId}.
func (h *Handler) DeselectModule(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	q, err := h.Service.Deselect(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// Reset handles POST /api/v1/quotes/{id}/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	q, err := h.Service.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// Total handles GET /api/v1/quotes/{id}/total?plan=&discount=.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	discount, err := parseDiscount(r.URL.Query().Get("discount"))
	if err != nil {
		writeError(w, err)
		return
	}
	plan := catalog.PlanID(strings.TrimSpace(r.URL.Query().Get("plan")))
	b, err := h.Service.Total(r.Context(), chi.URLParam(r, "id"), plan, discount)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, b)
}

// Save handles POST /api/v1/quotes/{id}/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req saveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	saved, err := h.Service.Save(r.Context(), chi.URLParam(r, "id"), catalog.PlanID(strings.TrimSpace(req.Plan)), req.Discount)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// ListSaved handles GET /api/v1/quotes/{id}/saved.
func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	page := common.ParsePage(r, 20)
	list, err := h.Service.SavedQuotes(r.Context(), chi.URLParam(r, "id"), page.Number, page.PerPage)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []repo.SavedQuote{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       list,
		"pagination": common.Page{Number: page.Number, PerPage: page.PerPage, Count: len(list)},
	})
}

// SavedQuote handles GET /api/v1/saved-quotes/{id}.
func (h *Handler) SavedQuote(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	saved, err := h.Service.SavedQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, saved)
}

func parseDiscount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
	if err != nil {
		return decimal.Zero, invalid("discount", "%q is not a number", raw)
	}
	return d, nil
}

func writeError(w http.ResponseWriter, err error) {
	var (
		conflict *ConflictError
		vErr     *ValidationError
	)
	switch {
	case errors.As(err, &conflict):
		common.JSONError(w, http.StatusConflict, "CONFLICT", conflict.Message, map[string]any{
			"module_id":      conflict.ModuleID,
			"conflicts_with": conflict.ConflictsWith,
		})
	case errors.As(err, &vErr):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", vErr.Reason, map[string]any{
			"field": vErr.Field,
		})
	case errors.Is(err, ErrSessionNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "quote session not found", nil)
	case errors.Is(err, repo.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "saved quote not found", nil)
	case errors.Is(err, ErrArchiveUnavailable):
		common.WriteError(w, common.Unavailable("saved quotes are not enabled", err))
	default:
		common.WriteError(w, err)
	}
}
