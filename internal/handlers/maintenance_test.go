package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiotable/internal/test"
)

func TestSyncAudio(t *testing.T) {
	env := newTestEnv(t)
	test.WriteWAV(t, env.root, "star.wav")

	resp := env.do(httptest.NewRequest(http.MethodPost, "/maintenance/sync-audio-db", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.authed(httptest.NewRequest(http.MethodPost, "/maintenance/sync-audio-db", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"added": 2}`, string(readBody(t, resp)))

	resp = env.authed(httptest.NewRequest(http.MethodPost, "/maintenance/sync-audio-db", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"added": 0}`, string(readBody(t, resp)))
}
