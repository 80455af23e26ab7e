package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"audiotable/internal/config"
	"audiotable/internal/metrics"
	"audiotable/internal/models"
	"audiotable/internal/server"
	"audiotable/internal/test"
)

const (
	testSecret   = "handler-test-secret"
	testUser     = "admin"
	testPassword = "s3cret-pass"
)

// testEnv is a full server over an in-memory database. The audio directory
// holds moon.wav (registered as id 7) and sun.wav (disk only).
type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	srv     *server.Server
	root    string
	metrics *metrics.Metrics
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, tearDown := test.GetTestDB(t)
	t.Cleanup(tearDown)

	root := t.TempDir()
	moon := test.WriteWAV(t, root, "moon.wav")
	test.WriteWAV(t, root, "sun.wav")
	test.CreateTestAsset(t, db, 7, "moon.wav", moon)
	test.CreateTestUser(t, db, testUser, testPassword)

	cfg := &config.AppConfig{
		JWT: config.JWTConfig{Secret: testSecret, AccessExpiryMinutes: 60},
		Storage: config.StorageConfig{
			AudioDir:       root,
			MaxUploadSize:  1 << 20,
			AllowedFormats: []string{".wav", ".mp3"},
		},
		RateLimit: config.RateLimitConfig{LoginPerMinute: 100, BulkPerMinute: 100},
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	return &testEnv{
		t:       t,
		db:      db,
		srv:     server.New(cfg, db, m, reg),
		root:    root,
		metrics: m,
		reg:     reg,
	}
}

func (e *testEnv) do(req *http.Request) *http.Response {
	e.t.Helper()
	resp, err := e.srv.App().Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) token() string {
	e.t.Helper()

	req := jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": testUser,
		"password": testPassword,
	})
	resp := e.do(req)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	decode(e.t, resp, &body)
	require.NotEmpty(e.t, body.AccessToken)
	return body.AccessToken
}

// authed sends req with a fresh bearer token
func (e *testEnv) authed(req *http.Request) *http.Response {
	e.t.Helper()
	req.Header.Set("Authorization", "Bearer "+e.token())
	return e.do(req)
}

func (e *testEnv) createRow(col1, col2 string, audioID *int64) int64 {
	e.t.Helper()
	row := &models.TableRow{Col1: col1, Col2: col2, AudioID: audioID}
	require.NoError(e.t, e.db.Create(row).Error)
	return row.ID
}

func (e *testEnv) row(id int64) models.TableRow {
	e.t.Helper()
	var row models.TableRow
	require.NoError(e.t, e.db.First(&row, id).Error)
	return row
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		panic(err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func int64Ptr(v int64) *int64 {
	return &v
}
