package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"group_chat_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitRejectsBadLevel(t *testing.T) {
	require.Error(t, Init(nil, gin.ReleaseMode))
	require.Error(t, Init(&config.LogConfig{LogPath: t.TempDir(), Level: "loud"}, gin.ReleaseMode))
}

func TestInitFillsDefaults(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir}
	require.NoError(t, Init(cfg, gin.ReleaseMode))
	require.Equal(t, filepath.Join(dir, "app.log"), cfg.FileName)
	require.Equal(t, "info", cfg.Level)
	require.Equal(t, 100, cfg.MaxSize)
}

func TestRedactToken(t *testing.T) {
	require.Equal(t, "a=1", redactToken("a=1"))
	require.Equal(t, "a=1&token=***", redactToken("a=1&token=secret"))
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinLogger(), GinRecovery(true))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsBrokenPipeError(t *testing.T) {
	require.True(t, isBrokenPipeError(errors.New("write: broken pipe")))
	require.False(t, isBrokenPipeError(errors.New("timeout")))
}
