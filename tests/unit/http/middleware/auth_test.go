package http_middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"whatsfleet/internal/http/middleware"
	"whatsfleet/pkg/logger"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoKeysConfigured(t *testing.T) {
	config := &middleware.AuthConfig{HeaderName: "X-API-Key"}
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(noopHandler())

	req := httptest.NewRequest("GET", "/devices", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_SkipsConfiguredPaths(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		SkipPaths:  []string{"/health"},
		HeaderName: "X-API-Key",
	}
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(noopHandler())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingAPIKey(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		HeaderName: "X-API-Key",
	}
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(noopHandler())

	req := httptest.NewRequest("GET", "/devices", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidAPIKey(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		HeaderName: "X-API-Key",
	}
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(noopHandler())

	req := httptest.NewRequest("GET", "/devices", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidAPIKeyFromHeader(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		OwnerByKey: map[string]string{"secret": "owner-1"},
		HeaderName: "X-API-Key",
	}

	var gotOwner string
	var ok bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, ok = middleware.OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(handler)

	req := httptest.NewRequest("GET", "/devices", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ok)
	assert.Equal(t, "owner-1", gotOwner)
}

func TestAuthMiddleware_ValidAPIKeyFromBearerHeader(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		OwnerByKey: map[string]string{"secret": "owner-1"},
		HeaderName: "X-API-Key",
	}
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(noopHandler())

	req := httptest.NewRequest("GET", "/devices", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_KeyWithNoOwnerMappingLeavesContextEmpty(t *testing.T) {
	config := &middleware.AuthConfig{
		APIKeys:    []string{"secret"},
		HeaderName: "X-API-Key",
	}

	var ok bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = middleware.OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.AuthMiddleware(config, &logger.NoopLogger{})(handler)

	req := httptest.NewRequest("GET", "/devices", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.False(t, ok)
}

func TestBasicAuthMiddleware(t *testing.T) {
	t.Run("skips auth when no credentials configured", func(t *testing.T) {
		wrapped := middleware.BasicAuthMiddleware("", "", &logger.NoopLogger{})(noopHandler())

		req := httptest.NewRequest("GET", "/devices", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a request with no credentials", func(t *testing.T) {
		wrapped := middleware.BasicAuthMiddleware("admin", "pw", &logger.NoopLogger{})(noopHandler())

		req := httptest.NewRequest("GET", "/devices", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		wrapped := middleware.BasicAuthMiddleware("admin", "pw", &logger.NoopLogger{})(noopHandler())

		req := httptest.NewRequest("GET", "/devices", nil)
		req.SetBasicAuth("admin", "wrong")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts correct credentials", func(t *testing.T) {
		wrapped := middleware.BasicAuthMiddleware("admin", "pw", &logger.NoopLogger{})(noopHandler())

		req := httptest.NewRequest("GET", "/devices", nil)
		req.SetBasicAuth("admin", "pw")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("always skips health checks", func(t *testing.T) {
		wrapped := middleware.BasicAuthMiddleware("admin", "pw", &logger.NoopLogger{})(noopHandler())

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
