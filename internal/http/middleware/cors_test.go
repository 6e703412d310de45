package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	return CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := corsHandler([]string{"https://tobro.digital"})

	req := httptest.NewRequest(http.MethodGet, "/testimonials", nil)
	req.Header.Set("Origin", "https://tobro.digital")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://tobro.digital" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := corsHandler([]string{"https://tobro.digital"})

	req := httptest.NewRequest(http.MethodGet, "/testimonials", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("request should still be served, got %d", w.Code)
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	handler := corsHandler([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/testimonials", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := corsHandler([]string{"https://tobro.digital"})

	req := httptest.NewRequest(http.MethodOptions, "/queries", nil)
	req.Header.Set("Origin", "https://tobro.digital")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
