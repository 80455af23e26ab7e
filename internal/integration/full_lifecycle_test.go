package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"audiotable/internal/config"
	"audiotable/internal/database"
	"audiotable/internal/server"
	"audiotable/internal/test"
)

// IntegrationTestSuite holds the state for integration tests
type IntegrationTestSuite struct {
	t        *testing.T
	srv      *server.Server
	db       *gorm.DB
	audioDir string
	token    string
}

// SetupIntegrationTestSuite creates a server over a fresh database with the
// configured admin seeded the way startup does it
func SetupIntegrationTestSuite(t *testing.T) *IntegrationTestSuite {
	t.Helper()

	db, tearDown := test.GetTestDB(t)
	t.Cleanup(tearDown)

	cfg := &config.AppConfig{
		JWT:   config.JWTConfig{Secret: "integration-secret", AccessExpiryMinutes: 30},
		Admin: config.AdminConfig{Username: "admin", Password: "correct horse"},
		Storage: config.StorageConfig{
			AudioDir:       t.TempDir(),
			MaxUploadSize:  4 << 20,
			AllowedFormats: []string{".wav"},
		},
	}

	seeded, err := database.SeedAdmin(db, cfg.Admin, nil)
	require.NoError(t, err)
	require.True(t, seeded)

	return &IntegrationTestSuite{
		t:        t,
		srv:      server.New(cfg, db, nil, nil),
		db:       db,
		audioDir: cfg.Storage.AudioDir,
	}
}

func (s *IntegrationTestSuite) request(method, target, contentType string, body []byte) *http.Response {
	s.t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.srv.App().Test(req, -1)
	require.NoError(s.t, err)
	return resp
}

func (s *IntegrationTestSuite) jsonCall(method, target string, body interface{}, out interface{}) int {
	s.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(s.t, err)
	}

	resp := s.request(method, target, "application/json", payload)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) upload(name string, content []byte) int64 {
	s.t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, writer.Close())

	resp := s.request(http.MethodPost, "/upload", writer.FormDataContentType(), body.Bytes())
	defer resp.Body.Close()
	require.Equal(s.t, http.StatusOK, resp.StatusCode)

	var out struct {
		AudioID int64 `json:"audio_id"`
	}
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&out))
	return out.AudioID
}

// TestAudioTableLifecycle walks the whole flow a user of the table goes
// through: login, upload, bulk import, edit, export and sync
func TestAudioTableLifecycle(t *testing.T) {
	suite := SetupIntegrationTestSuite(t)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodPost, "/auth/login",
		map[string]string{"username": "admin", "password": "correct horse"}, &login))
	suite.token = login.AccessToken

	wav, err := os.ReadFile(test.WriteWAV(t, t.TempDir(), "src.wav"))
	require.NoError(t, err)
	moonID := suite.upload("Moon Song.wav", wav)

	// Dropped into the directory without going through the API
	test.WriteWAV(t, suite.audioDir, "sun.wav")

	var imported struct {
		Created   int      `json:"created"`
		Unmatched []string `json:"unmatched"`
	}
	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodPost, "/rows/bulk", []interface{}{
		map[string]interface{}{"col1": "first", "col2": "moon", "audio": "moon song.wav"},
		[]interface{}{"second", "sun", "SUN.wav"},
		[]interface{}{"third", "sun again", "sun.wav"},
		map[string]interface{}{"col1": "fourth", "audio_filename": "comet.wav"},
	}, &imported))
	assert.Equal(t, 4, imported.Created)
	assert.Equal(t, []string{"comet.wav"}, imported.Unmatched)

	var page struct {
		Total int64 `json:"total"`
		Items []struct {
			ID            int64   `json:"id"`
			Col1          string  `json:"col1"`
			AudioID       *int64  `json:"audio_id"`
			AudioFilename *string `json:"audio_filename"`
		} `json:"items"`
	}
	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodGet, "/rows", nil, &page))
	require.Equal(t, int64(4), page.Total)
	require.NotNil(t, page.Items[0].AudioID)
	assert.Equal(t, moonID, *page.Items[0].AudioID)
	require.NotNil(t, page.Items[1].AudioID)
	require.NotNil(t, page.Items[2].AudioID)
	assert.Equal(t, *page.Items[1].AudioID, *page.Items[2].AudioID, "one registration per file per batch")
	assert.Equal(t, "sun.wav", *page.Items[1].AudioFilename)
	assert.Nil(t, page.Items[3].AudioID)

	// Attach the uploaded file to the unmatched row by id
	fourth := page.Items[3].ID
	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodPut, fmt.Sprintf("/rows/%d", fourth),
		map[string]interface{}{"audio_id": fmt.Sprint(moonID)}, nil))

	resp := suite.request(http.MethodGet, fmt.Sprintf("/audio/%d", moonID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = suite.request(http.MethodGet, "/export.xlsx", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	sheetRows, err := f.GetRows("音频表")
	require.NoError(t, err)
	require.Len(t, sheetRows, 5)
	assert.Equal(t, []string{"fourth", "", fmt.Sprint(moonID), "Moon Song.wav"}, sheetRows[4])
	require.NoError(t, f.Close())
	resp.Body.Close()

	// Everything on disk is registered by now
	var synced struct {
		Added int `json:"added"`
	}
	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodPost, "/maintenance/sync-audio-db", nil, &synced))
	assert.Zero(t, synced.Added)

	require.Equal(t, http.StatusOK, suite.jsonCall(http.MethodDelete, fmt.Sprintf("/rows/%d", fourth), nil, nil))
	resp = suite.request(http.MethodGet, fmt.Sprintf("/audio/%d", moonID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
