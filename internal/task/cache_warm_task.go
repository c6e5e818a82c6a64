package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"marketplace_shipping_v1/pkg/logger"
)

// DefaultCacheWarmSpec 每 30 分钟预热一次
const DefaultCacheWarmSpec = "0 */30 * * * *"

// Warmer 可预热的参考数据
type Warmer interface {
	Warm(ctx context.Context) error
}

// WarmerFunc 函数适配器
type WarmerFunc func(ctx context.Context) error

func (f WarmerFunc) Warm(ctx context.Context) error { return f(ctx) }

// ==================== CacheWarmTask 参考数据预热 ====================

// CacheWarmTask 定时把区域、档位、配送方式等参考数据装入缓存，
// 避免 TTL 过期后第一批报价请求同时回源
type CacheWarmTask struct {
	warmers map[string]Warmer
	names   []string
	log     logger.Logger
	cron    *cron.Cron
	spec    string
	timeout time.Duration
}

func NewCacheWarmTask(log logger.Logger, spec string) *CacheWarmTask {
	if spec == "" {
		spec = DefaultCacheWarmSpec
	}
	return &CacheWarmTask{
		warmers: make(map[string]Warmer),
		log:     log,
		cron:    cron.New(cron.WithSeconds()), // 支持秒级控制
		spec:    spec,
		timeout: 2 * time.Minute,
	}
}

// Register 注册预热项；同名覆盖
func (t *CacheWarmTask) Register(name string, w Warmer) *CacheWarmTask {
	if _, ok := t.warmers[name]; !ok {
		t.names = append(t.names, name)
	}
	t.warmers[name] = w
	return t
}

// Start 启动定时任务，并在后台执行一次首次预热
func (t *CacheWarmTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		_ = t.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("无法启动缓存预热任务 spec=%q: %w", t.spec, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.log.Infof(ctx, "[CacheWarmTask] 服务启动，正在执行首次预热...")
		_ = t.RunOnce(ctx)
	}()

	t.cron.Start()
	t.log.Infof(context.Background(), "[CacheWarmTask] 缓存预热任务已启动 (%s)", t.spec)
	return nil
}

// Stop 停止任务，等待正在执行的预热结束
func (t *CacheWarmTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Infof(context.Background(), "[CacheWarmTask] 已停止")
}

// RunOnce 并发执行全部预热项；单项失败不影响其他项，返回第一个错误
func (t *CacheWarmTask) RunOnce(ctx context.Context) error {
	start := time.Now()
	var g errgroup.Group
	for _, name := range t.names {
		name, w := name, t.warmers[name]
		g.Go(func() error {
			if err := w.Warm(ctx); err != nil {
				t.log.Warnf(ctx, "[CacheWarmTask] 预热 %s 失败: %v", name, err)
				return fmt.Errorf("warm %s: %w", name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		t.log.Infof(ctx, "[CacheWarmTask] 本轮预热完成 %v，耗时 %s", t.names, time.Since(start))
	}
	return err
}
