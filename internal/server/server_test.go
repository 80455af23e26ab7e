package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiotable/internal/config"
	"audiotable/internal/health"
	"audiotable/internal/logging"
	"audiotable/internal/test"
)

func newTestServer(t *testing.T, origins string) *Server {
	t.Helper()

	db, tearDown := test.GetTestDB(t)
	t.Cleanup(tearDown)

	cfg := &config.AppConfig{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, CORSOrigins: origins},
		JWT:     config.JWTConfig{Secret: "server-test", AccessExpiryMinutes: 5},
		Storage: config.StorageConfig{AudioDir: t.TempDir(), MaxUploadSize: 1 << 20},
	}
	return New(cfg, db, nil, nil)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/rows", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(logging.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/rows", nil)
	req.Header.Set(logging.RequestIDHeader, "fixed-id")
	resp, err = srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(logging.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, "http://localhost:5173, http://example.com")

	req := httptest.NewRequest(http.MethodOptions, "/rows", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/rows", nil)
	req.Header.Set("Origin", "http://evil.test")
	resp, err = srv.App().Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)

	// Storage may report degraded on a nearly full host disk
	var body health.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.DB.Status)
	assert.NotEqual(t, "down", body.Storage.Status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, "")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/rows"},
		{http.MethodPost, "/rows/bulk"},
		{http.MethodPut, "/rows/1"},
		{http.MethodDelete, "/rows/1"},
		{http.MethodPost, "/upload"},
		{http.MethodPost, "/maintenance/sync-audio-db"},
		{http.MethodGet, "/auth/me"},
	}

	for _, r := range routes {
		resp, err := srv.App().Test(httptest.NewRequest(r.method, r.path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", r.method, r.path)
	}
}
