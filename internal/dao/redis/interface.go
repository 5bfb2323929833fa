// Package redis 缓存服务接口与 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 同步缓存读写
type CacheService interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// MGet 按 keys 顺序返回，缺失项为空字符串
	MGet(ctx context.Context, keys ...string) ([]string, error)
}

// AsyncCacheService 额外提供异步写回能力
type AsyncCacheService interface {
	CacheService
	// SubmitTask 队列满时在调用方协程同步执行
	SubmitTask(action func())
	Close()
}
