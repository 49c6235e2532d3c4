package access

import (
	"errors"
	"net/http"

	"github.com/noah-isme/nuvme-configurator/internal/common"
)

// Handler exposes the PIN gate endpoints.
type Handler struct {
	Gate *Gate
}

type pinRequest struct {
	PIN string `json:"pin" validate:"required,min=4,max=64"`
}

type sessionView struct {
	Authenticated bool   `json:"authenticated"`
	GateEnabled   bool   `json:"gate_enabled"`
	Subject       string `json:"subject,omitempty"`
}

// Unlock handles POST /api/v1/access/pin.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	if h.Gate == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "access gate not configured", nil)
		return
	}
	var req pinRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	token, err := h.Gate.Unlock(r.Context(), req.PIN)
	if err != nil {
		if errors.Is(err, ErrInvalidPIN) {
			common.JSONError(w, http.StatusUnauthorized, "INVALID_PIN", "incorrect pin", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, token)
}

// Session handles GET /api/v1/access/session. It never fails; an invalid
// token simply reports authenticated=false.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if h.Gate == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "access gate not configured", nil)
		return
	}
	view := sessionView{GateEnabled: h.Gate.Enabled()}
	if !view.GateEnabled {
		view.Authenticated = true
	} else if subject, err := h.Gate.Verify(bearerToken(r)); err == nil {
		view.Authenticated = true
		view.Subject = subject
	}
	common.Data(w, http.StatusOK, view)
}
