package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterThrottlesPerAddress(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send("10.0.0.1:2222"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same host to be throttled across ports, got %d", code)
	}
	// A different host has its own budget.
	if code := send("10.0.0.2:1111"); code != http.StatusOK {
		t.Fatalf("expected other host to pass, got %d", code)
	}
}
