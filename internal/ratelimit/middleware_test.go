package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store, err := NewStore(client)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	lim, err := New("1-M", store)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	handler := Handler{Limiter: lim, Key: func(*http.Request) string { return "static" }}
	counted := handler.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/access/pin", nil)
	rr1 := httptest.NewRecorder()
	counted.ServeHTTP(rr1, req.Clone(req.Context()))
	if rr1.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rr1.Code)
	}

	rr2 := httptest.NewRecorder()
	counted.ServeHTTP(rr2, req.Clone(req.Context()))
	if rr2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request, got %d", rr2.Code)
	}
	if rr2.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("unexpected limit header: %q", rr2.Header().Get("X-RateLimit-Limit"))
	}
	if rr2.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHandlerMiddlewareMemoryStorePerKey(t *testing.T) {
	store, _ := NewStore(nil)
	lim, err := New("2-H", store)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	counted := Handler{Limiter: lim, Key: ClientKey("pin")}.Middleware(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		counted.ServeHTTP(rr, req)
		return rr.Code
	}
	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other clients must not share the bucket, got %d", code)
	}
}

func TestNewRejectsBadRate(t *testing.T) {
	store, _ := NewStore(nil)
	if _, err := New("five per minute", store); err == nil {
		t.Fatal("expected parse error")
	}
}

type failingStore struct{}

var errStore = errors.New("store down")

func (failingStore) Get(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStore
}
func (failingStore) Peek(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStore
}
func (failingStore) Reset(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStore
}
func (failingStore) Increment(context.Context, string, int64, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStore
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	lim, err := New("1-S", failingStore{})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	var called error
	handler := Handler{
		Limiter: lim,
		Key:     func(*http.Request) string { return "err" },
		OnError: func(err error) { called = err },
	}
	rr := httptest.NewRecorder()
	handler.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected handler to proceed on error, got %d", rr.Code)
	}
	if !errors.Is(called, errStore) {
		t.Fatalf("expected OnError callback with store error, got %v", called)
	}
}
