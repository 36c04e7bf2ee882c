package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pawmart_web/internal/authbridge"
	"pawmart_web/internal/config"
	"pawmart_web/internal/handler"
	"pawmart_web/internal/jobs"
	"pawmart_web/internal/middleware"
	"pawmart_web/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		GinMode:           "test",
		ServerHost:        "127.0.0.1",
		ServerPort:        "0",
		ServerTimeout:     time.Second,
		FrontendURL:       "http://front.test",
		SessionCookieName: "pm_sid",
		SessionTTL:        time.Hour,
	}
	registry := workspace.NewRegistry(cfg, nil, authbridge.NewMemoryStore(time.Hour), nil, logger)
	handlers := Handlers{
		Health:    handler.NewHealthHandler(cfg, registry),
		Session:   handler.NewSessionHandler(cfg, nil, logger),
		Theme:     handler.NewThemeHandler(logger),
		Listing:   handler.NewListingHandler(nil, logger),
		MyListing: handler.NewMyListingHandler(logger),
		Order:     handler.NewOrderHandler(nil, logger),
		Admin:     handler.NewAdminHandler(logger),
		Dashboard: handler.NewDashboardHandler(nil, logger),
	}
	job := jobs.NewListingSyncJob(nil, nil, logger, cfg)

	server, err := NewServer(cfg, logger, handlers, registry, middleware.NewRateLimiter(cfg), job)
	require.NoError(t, err)
	return server
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestServer_CORSAllowsFrontendWithCredentials(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://front.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://front.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestServer_CORSRejectsOtherOrigins(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ShutdownStopsSyncJob(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.listingSyncJob.SetupAndStart())
	assert.NoError(t, server.Shutdown(t.Context()))
}
