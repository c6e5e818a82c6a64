package cache

import (
	"context"
	"sync"
	"time"
)

// memoryItem 内部结构，包含值和过期时间
type memoryItem struct {
	value      []byte
	expiration time.Time // 零值表示永不过期
}

// MemoryStore 进程内存储，单实例部署或测试使用
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	tags  map[string]map[string]struct{}
	now   func() time.Time
}

// MemoryOption 内存存储选项
type MemoryOption func(*MemoryStore)

// WithClock 注入时钟，测试中用于确定性过期
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryItem),
		tags:  make(map[string]map[string]struct{}),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get 获取缓存并验证是否过期
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !item.expiration.IsZero() && !s.now().Before(item.expiration) {
		// 懒删除
		s.mu.Lock()
		if cur, ok := s.items[key]; ok && !cur.expiration.IsZero() && !s.now().Before(cur.expiration) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return item.value, true, nil
}

// Set 设置缓存
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item
	for _, tag := range tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// Forget 删除缓存
func (s *MemoryStore) Forget(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

// ForgetTags 按标签删除
func (s *MemoryStore) ForgetTags(_ context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		for key := range s.tags[tag] {
			delete(s.items, key)
		}
		delete(s.tags, tag)
	}
	return nil
}

// Len 当前条目数（含未清理的过期条目）
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
