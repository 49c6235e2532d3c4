package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvme-configurator/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "test",
		QuoteSessionTTL:  time.Hour,
		LockTTL:          time.Second,
		LockRetryBackoff: 10 * time.Millisecond,
		AccessTokenTTL:   time.Hour,
		AccessRateLimit:  "5-M",
		APIRateLimit:     "1000-M",
		BodyLimitBytes:   1 << 20,
		QueueConcurrency: 1,
		Obs:              config.ObsConfig{MetricsNamespace: "nuvme_test"},
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	c, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.Handler
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), rr.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error.Code
}

func TestQuoteFlow(t *testing.T) {
	h := newTestHandler(t, testConfig())

	rr := do(t, h, http.MethodGet, "/api/v1/missions", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = do(t, h, http.MethodPost, "/api/v1/quotes", "", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, rr, &created)
	require.NotEmpty(t, created.ID)
	base := "/api/v1/quotes/" + created.ID

	rr = do(t, h, http.MethodPut, base+"/mission", `{"mission":"modernization"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPut, base+"/modules/cicd", `{"quantity":5}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPut, base+"/modules/kubernetes", `{"quantity":3}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPut, base+"/modules/gitops", `{"quantity":2}`, "")
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "CONFLICT", errorCode(t, rr))

	rr = do(t, h, http.MethodGet, base+"/total?discount=10", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var total struct {
		Total      int64  `json:"total"`
		TotalLabel string `json:"total_label"`
	}
	decodeData(t, rr, &total)
	require.Equal(t, int64(2862000), total.Total)
	require.Equal(t, "R$ 28.620,00", total.TotalLabel)

	rr = do(t, h, http.MethodDelete, base+"/modules/cicd", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPut, base+"/modules/gitops", `{"quantity":2}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, base+"/reset", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var reset struct {
		Entries []json.RawMessage `json:"entries"`
	}
	decodeData(t, rr, &reset)
	require.Empty(t, reset.Entries)

	// saving needs a database
	rr = do(t, h, http.MethodPost, base+"/save", `{}`, "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/quotes/missing", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuizEndpoints(t *testing.T) {
	h := newTestHandler(t, testConfig())

	body := `{"answers":{"relationship":"strategic-partnership","incident-handling":"systemic-improvement","interaction-rhythm":"executive-tracking"}}`
	rr := do(t, h, http.MethodPost, "/api/v1/quiz/plan", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var plan struct {
		Recommended string `json:"recommended"`
	}
	decodeData(t, rr, &plan)
	require.Equal(t, "premier", plan.Recommended)

	rr = do(t, h, http.MethodPost, "/api/v1/quiz/mission", `{}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAccessGate(t *testing.T) {
	hash, err := argon2id.CreateHash("2468", &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	cfg := testConfig()
	cfg.AccessPINHash = hash
	cfg.AccessTokenSecret = "test-secret-with-enough-entropy"
	cfg.AccessRateLimit = "3-M"
	h := newTestHandler(t, cfg)

	rr := do(t, h, http.MethodGet, "/api/v1/plans", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/access/pin", `{"pin":"1357"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "INVALID_PIN", errorCode(t, rr))

	rr = do(t, h, http.MethodPost, "/api/v1/access/pin", `{"pin":"2468"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var token struct {
		Value string `json:"access_token"`
	}
	decodeData(t, rr, &token)
	require.NotEmpty(t, token.Value)

	rr = do(t, h, http.MethodGet, "/api/v1/plans", "", token.Value)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/access/session", "", token.Value)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `"authenticated":true`))

	rr = do(t, h, http.MethodPost, "/api/v1/access/pin", `{"pin":"1357"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(t, h, http.MethodPost, "/api/v1/access/pin", `{"pin":"1357"}`, "")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestHealthAndOps(t *testing.T) {
	h := newTestHandler(t, testConfig())

	rr := do(t, h, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/v1/ops/queues", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimitBytes = 64
	h := newTestHandler(t, cfg)

	rr := do(t, h, http.MethodPost, "/api/v1/quiz/plan", `{"answers":{"relationship":"`+strings.Repeat("x", 128)+`"}}`, "")
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
