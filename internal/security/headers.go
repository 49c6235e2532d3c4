package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultHSTSMaxAge = 365 * 24 * time.Hour

var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-site"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
}

// Headers sets the response headers of a JSON only API. HSTS is sent on TLS
// requests, and on requests a trusted proxy marks with X-Forwarded-Proto: https.
type Headers struct {
	Disabled        bool
	HSTSMaxAge      time.Duration
	HSTSSubdomains  bool
	TrustProxyProto bool
}

func (h Headers) Middleware(next http.Handler) http.Handler {
	if h.Disabled {
		return next
	}
	hsts := h.hstsValue()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		for _, kv := range apiHeaders {
			hdr.Set(kv[0], kv[1])
		}
		if h.secure(r) {
			hdr.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func (h Headers) secure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return h.TrustProxyProto && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (h Headers) hstsValue() string {
	age := h.HSTSMaxAge
	if age <= 0 {
		age = defaultHSTSMaxAge
	}
	v := "max-age=" + strconv.FormatInt(int64(age/time.Second), 10)
	if h.HSTSSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// NoStore marks quote and access responses as uncacheable.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
