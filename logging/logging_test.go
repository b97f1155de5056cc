package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/logging"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logging.For(logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf}), logging.ComponentRates)
	l.Debug("refreshed", "base", "USD")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refreshed", entry["msg"])
	assert.Equal(t, "rates", entry["component"])
	assert.Equal(t, "USD", entry["base"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: "warn", Output: &buf})
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}

func TestContextRoundTrip(t *testing.T) {
	l := logging.Discard()
	ctx := logging.WithContext(context.Background(), l)
	assert.Same(t, l, logging.FromContext(ctx))
	assert.Same(t, slog.Default(), logging.FromContext(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})

	r := gin.New()
	r.Use(logging.GinMiddleware(base))
	r.GET("/boom", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside"`)
	assert.Contains(t, out, `"msg":"request failed"`)
	assert.Contains(t, out, `"path":"/boom"`)
	assert.Contains(t, out, `"component":"http"`)
}
