// Package blob 图片上传：把 data URI 或 base64 负载落盘并返回可访问的 URL
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"group_chat_server/internal/config"
	"group_chat_server/internal/infrastructure/metrics"
	"group_chat_server/pkg/errorx"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// PublicPrefix 上传文件对外访问的路由前缀
const PublicPrefix = "/static/files"

// Uploader 上传图片负载，返回 URL
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// LocalUploader 本地磁盘实现，外层套熔断与超时
type LocalUploader struct {
	dir      string
	baseURL  string
	maxBytes int64
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewLocalUploader(cfg *config.UploadConfig) (*LocalUploader, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.Dir, err)
	}
	u := &LocalUploader{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout * time.Second,
	}
	maxFailures := cfg.MaxFailures
	u.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "blob-upload",
		MaxRequests: 1,
		Timeout:     cfg.OpenInterval * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 负载本身不合法不算存储故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errInvalidPayload)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return u, nil
}

var errInvalidPayload = errors.New("invalid image payload")

func (u *LocalUploader) Upload(ctx context.Context, payload string) (string, error) {
	start := time.Now()
	defer func() { metrics.UploadDuration.Observe(time.Since(start).Seconds()) }()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	url, err := u.breaker.Execute(func() (string, error) {
		return u.store(ctx, payload)
	})
	switch {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues("ok").Inc()
		return url, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return "", errorx.Wrap(err, errorx.CodeUploadError, "图片服务暂不可用")
	case errors.Is(err, errInvalidPayload):
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return "", errorx.Wrap(err, errorx.CodeInvalidParam, "图片格式不正确")
	default:
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		zap.L().Error("upload image failed", zap.Error(err))
		return "", errorx.Wrap(err, errorx.CodeUploadError, "图片上传失败")
	}
}

func (u *LocalUploader) store(ctx context.Context, payload string) (string, error) {
	data, err := decodePayload(payload)
	if err != nil {
		return "", err
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit %d", errInvalidPayload, len(data), u.maxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", errInvalidPayload, mt.String())
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + mt.Extension()
	tmp := filepath.Join(u.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, filepath.Join(u.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	return u.baseURL + PublicPrefix + "/" + name, nil
}

// decodePayload 支持 data:image/png;base64,xxx 与裸 base64
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty", errInvalidPayload)
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			return nil, fmt.Errorf("%w: malformed data uri", errInvalidPayload)
		}
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
		}
	}
	return data, nil
}

var _ Uploader = (*LocalUploader)(nil)
