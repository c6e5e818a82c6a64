package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"marketplace_shipping_v1/pkg/logger"
)

// LoadTimeout 单次回源的最长时间；回源与发起请求的 ctx 脱离取消关系
const LoadTimeout = 10 * time.Second

// Observer 命中率观察者（由 metrics 实现）
type Observer interface {
	CacheLookup(category string, hit bool)
}

// Cache 读穿缓存：包装 Store，附带日志、TTL 分档与并发合并加载
type Cache struct {
	store    Store
	log      logger.Logger
	ttls     TTLs
	observer Observer
	group    singleflight.Group
}

// New 创建缓存
func New(store Store, log logger.Logger, ttls TTLs) *Cache {
	if ttls == nil {
		ttls = DefaultTTLs()
	}
	return &Cache{store: store, log: log, ttls: ttls}
}

// SetObserver 设置命中率观察者
func (c *Cache) SetObserver(o Observer) {
	c.observer = o
}

// TTL 某类别的 TTL
func (c *Cache) TTL(cat Category) time.Duration {
	return c.ttls.For(cat)
}

// ForgetCategories 按类别失效；不传则失效全部类别
func (c *Cache) ForgetCategories(ctx context.Context, cats ...Category) error {
	if len(cats) == 0 {
		cats = AllCategories()
	}
	tags := make([]string, 0, len(cats))
	for _, cat := range cats {
		tags = append(tags, CategoryTag(cat))
	}
	return c.store.ForgetTags(ctx, tags...)
}

// ForgetProducer 失效某生产者的派生缓存
func (c *Cache) ForgetProducer(ctx context.Context, producerID int64) error {
	return c.store.ForgetTags(ctx, ProducerTag(producerID))
}

func (c *Cache) observe(cat Category, hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(string(cat), hit)
	}
}

// Remember 读穿：命中直接返回；未命中调用 load 并按类别 TTL 写回。
// 缓存读写失败只记日志、按未命中处理；load 的错误原样返回且不会被缓存。
// 同一 key 的并发未命中合并为一次回源，回源使用不可取消的 ctx（上限 LoadTimeout），
// 每个调用方只受自己 ctx 的取消影响。
func Remember[T any](ctx context.Context, c *Cache, cat Category, key string, tags []string, load func(context.Context) (T, error)) (T, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warnf(ctx, "[Cache] 读取失败 key=%s: %v", key, err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			c.observe(cat, true)
			return v, nil
		}
		c.log.Warnf(ctx, "[Cache] 反序列化失败，丢弃 key=%s", key)
	}
	c.observe(cat, false)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		payload, err := json.Marshal(v)
		if err != nil {
			c.log.Warnf(ctx, "[Cache] 序列化失败 key=%s: %v", key, err)
			return v, nil
		}
		allTags := append([]string{CategoryTag(cat)}, tags...)
		if err := c.store.Set(loadCtx, key, payload, c.ttls.For(cat), allTags...); err != nil {
			c.log.Warnf(ctx, "[Cache] 写入失败 key=%s: %v", key, err)
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
