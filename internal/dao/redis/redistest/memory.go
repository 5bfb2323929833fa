// Package redistest 进程内 AsyncCacheService 实现，供测试使用
package redistest

import (
	"context"
	"errors"
	"sync"
	"time"

	myredis "group_chat_server/internal/dao/redis"
)

// ErrDown Fail 打开后所有读写返回该错误
var ErrDown = errors.New("cache down")

type MemoryCache struct {
	mu   sync.Mutex
	data map[string]string
	Fail bool
	Sets int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (m *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrDown
	}
	m.data[key] = value
	m.Sets++
	return nil
}

func (m *MemoryCache) MGet(ctx context.Context, keys ...string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return nil, ErrDown
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

// SubmitTask 同步执行，测试中无需等待
func (m *MemoryCache) SubmitTask(action func()) { action() }

func (m *MemoryCache) Close() {}

func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

var _ myredis.AsyncCacheService = (*MemoryCache)(nil)
