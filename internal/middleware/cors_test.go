package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsRequest(t *testing.T, m *CORSMiddleware, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsExactOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"http://localhost:3000"})

	rec := corsRequest(t, m, http.MethodGet, "http://localhost:3000")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected origin to be reflected, got %q", got)
	}
}

func TestCORSRejectsSuffixCraftedOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"http://localhost:3000"})

	for _, origin := range []string{
		"http://evil.example",
		"http://evil.example/http://localhost:3000",
		"xhttp://localhost:3000",
	} {
		rec := corsRequest(t, m, http.MethodGet, origin)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected %q to be rejected, got header %q", origin, got)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	m := NewCORSMiddleware([]string{"http://localhost:3000"})

	rec := corsRequest(t, m, http.MethodOptions, "http://localhost:3000")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}
