package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"persona-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func TestEngineRunsInReleaseMode(t *testing.T) {
	h := NewHandler(nil, nil, nil, &config.Config{})
	r := h.engine()

	if gin.Mode() != gin.ReleaseMode {
		t.Errorf("gin mode = %q, want %q", gin.Mode(), gin.ReleaseMode)
	}

	// The router must be wired regardless of mode.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /api/health = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestEngineHandlesPreflight(t *testing.T) {
	h := NewHandler(nil, nil, nil, &config.Config{})
	r := h.engine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS preflight = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
