package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PioneData/CAT-Backend/internal/middleware"
	"github.com/stretchr/testify/assert"
)

// callWithOrigin wraps a simple 200-OK inner handler in the CORS middleware,
// optionally setting an Origin header, and returns the recorded response.
func callWithOrigin(t *testing.T, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.CORSMiddleware(inner)
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	rec := callWithOrigin(t, http.MethodGet, "http://localhost:5173")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddleware_UnknownOrigin(t *testing.T) {
	rec := callWithOrigin(t, http.MethodGet, "http://evil.example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	rec := callWithOrigin(t, http.MethodOptions, "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_NoOrigin(t *testing.T) {
	rec := callWithOrigin(t, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
