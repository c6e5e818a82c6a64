package cache

import (
	"context"
	"time"
)

// Store 键值存储端口，实现必须并发安全
type Store interface {
	// Get 返回值、是否命中；未命中不是错误
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set 写入并挂到给定标签下；ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	Forget(ctx context.Context, keys ...string) error
	// ForgetTags 删除标签下的所有键
	ForgetTags(ctx context.Context, tags ...string) error
}
