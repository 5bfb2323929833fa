package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"group_chat_server/internal/config"
	"group_chat_server/pkg/errorx"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func newTestUploader(t *testing.T, dir string) *LocalUploader {
	t.Helper()
	u, err := NewLocalUploader(&config.UploadConfig{
		Dir:          dir,
		BaseURL:      "http://cdn.local/",
		MaxBytes:     1 << 20,
		Timeout:      5,
		MaxFailures:  2,
		OpenInterval: 60,
	})
	require.NoError(t, err)
	return u
}

func TestUploadDataURI(t *testing.T) {
	dir := t.TempDir()
	u := newTestUploader(t, dir)

	url, err := u.Upload(context.Background(), "data:image/png;base64,"+pngBase64)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.local"+PublicPrefix+"/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	_, err = os.Stat(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
}

func TestUploadRawBase64(t *testing.T) {
	u := newTestUploader(t, t.TempDir())
	url, err := u.Upload(context.Background(), pngBase64)
	require.NoError(t, err)
	require.NotEmpty(t, url)
}

func TestUploadRejectsNonImage(t *testing.T) {
	u := newTestUploader(t, t.TempDir())
	for _, payload := range []string{"", "not base64 !!", "aGVsbG8gd29ybGQ=", "data:text/plain,hello"} {
		_, err := u.Upload(context.Background(), payload)
		require.Error(t, err, payload)
		require.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err), payload)
	}
}

func TestBreakerOpensAfterStoreFailures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "files")
	u := newTestUploader(t, dir)
	// 目录被替换为普通文件，写入必然失败
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	for i := 0; i < 2; i++ {
		_, err := u.Upload(context.Background(), pngBase64)
		require.Equal(t, errorx.CodeUploadError, errorx.GetCode(err))
		require.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	_, err := u.Upload(context.Background(), pngBase64)
	require.Equal(t, errorx.CodeUploadError, errorx.GetCode(err))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestUploadHonoursCanceledContext(t *testing.T) {
	u := newTestUploader(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := u.Upload(ctx, pngBase64)
	require.Equal(t, errorx.CodeUploadError, errorx.GetCode(err))
}
