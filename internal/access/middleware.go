package access

import (
	"net/http"

	"github.com/noah-isme/nuvme-configurator/internal/common"
)

// RequireAccess rejects requests without a valid bearer token when the gate
// is enabled. The token subject is stored on the request context.
func (g *Gate) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := g.Verify(bearerToken(r))
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithSubject(r.Context(), subject)))
	})
}
