package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mentorship-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHonoursLevel(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Env: "production"}, Log: config.LogConfig{Level: "warn"}}
	l, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	cfg.Log.Level = "bogus"
	l, err = New(cfg)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestMiddlewareStoresRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	e := echo.New()
	e.Use(Middleware(base))
	e.GET("/ping", func(c echo.Context) error {
		FromContext(c).Info("inside handler")
		FromCtx(c.Request().Context()).Info("inside service")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDKey, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	}
	assert.Equal(t, "HTTP request completed", entries[2].Message)
	assert.EqualValues(t, http.StatusNoContent, entries[2].ContextMap()["status"])
}

func TestFromCtxFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromCtx(context.Background()))
}
