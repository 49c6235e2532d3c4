package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync/atomic"
	"time"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the process readiness flag. It is set to false when
// graceful shutdown starts so load balancers drain the instance.
func SetReady(v bool) { ready.Store(v) }

// IsReady reports the readiness flag.
func IsReady() bool { return ready.Load() }

// Check probes one dependency.
type Check func(ctx context.Context) error

// Handler exposes HTTP handlers for health endpoints. Only configured
// dependencies are registered in Checks.
type Handler struct {
	Checks  map[string]Check
	Timeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready reports readiness based on the flag and dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ok", Checks: make(map[string]string, len(h.Checks))}
	code := http.StatusOK
	if !IsReady() {
		resp.Status = "shutting_down"
		code = http.StatusServiceUnavailable
	} else {
		names := make([]string, 0, len(h.Checks))
		for name := range h.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			result := "ok"
			if err := h.run(r.Context(), h.Checks[name]); err != nil {
				result = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
			}
			resp.Checks[name] = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h Handler) run(ctx context.Context, check Check) error {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return check(ctx)
}
