package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WarnLevel, &buf)

	l.Zerolog().Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Zerolog().Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevel("loud"), &buf)

	l.Zerolog().Debug().Msg("debug")
	l.Zerolog().Info().Msg("info")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "info")
}

func TestRequestIDContext(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))

	ctx := ContextWithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))

	var buf bytes.Buffer
	l := NewLogger(InfoLevel, &buf)
	l.WithContext(ctx).Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["req_id"])
}

func TestFiberLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(InfoLevel, &buf)

	app := fiber.New()
	app.Use(l.FiberLoggerMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c.UserContext()))
	})

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)

		reqID := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, reqID)
		assert.Contains(t, buf.String(), reqID)
		assert.Contains(t, buf.String(), "HTTP request processed")
	})

	t.Run("keeps incoming request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, "from-client")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "from-client", resp.Header.Get(RequestIDHeader))
	})
}
