package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"

	"marketplace_shipping_v1/internal/config"
	"marketplace_shipping_v1/internal/controller"
	"marketplace_shipping_v1/internal/metrics"
	"marketplace_shipping_v1/internal/middleware"
	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/internal/router"
	"marketplace_shipping_v1/internal/service"
	"marketplace_shipping_v1/internal/task"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/database"
	"marketplace_shipping_v1/pkg/logger"
)

// @title Marketplace Shipping API
// @version 1.0
// @description 多生产者订单运费计算服务
// @securityDefinitions.apikey OperatorToken
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load(getEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	// 2. 日志
	lg, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// 3. 初始化依赖
	deps, err := initDependencies(cfg, lg)
	if err != nil {
		lg.Errorf(context.Background(), "初始化依赖失败: %v", err)
		os.Exit(1)
	}
	defer deps.Close()

	// 4. 启动定时任务
	if err := initTasks(cfg, lg, deps); err != nil {
		lg.Errorf(context.Background(), "启动定时任务失败: %v", err)
		os.Exit(1)
	}

	// 5. 初始化路由
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.NewEngine(router.Deps{
		Log:       lg,
		Metrics:   deps.Metrics,
		QuoteCtl:  controller.NewQuoteController(deps.Services.Quote, lg),
		ConfigCtl: controller.NewShippingConfigController(deps.Services.Config, lg),
		Operator: middleware.OperatorAuthConfig{
			SecretKey: cfg.Admin.Secret,
			Issuer:    cfg.Admin.Issuer,
			TokenTTL:  cfg.Admin.TokenTTL,
		},
		FlushCooldown:  cfg.Admin.FlushCooldown,
		RequestTimeout: cfg.App.RequestTimeout,
		Health: func(ctx context.Context) error {
			return database.Ping(ctx, deps.DB)
		},
	})

	// 6. 启动服务
	startServer(cfg.App.Port, r, lg)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    *cache.Cache
	Metrics  *metrics.Metrics
	Services *Services
	Tasks    []*task.CacheWarmTask
}

// Services 服务集合
type Services struct {
	Quote  *service.QuoteService
	Config *service.ShippingConfigService
}

// Close 释放资源
func (d *Dependencies) Close() {
	for _, t := range d.Tasks {
		t.Stop()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ==================== 初始化函数 ====================

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, lg logger.Logger) (*Dependencies, error) {
	deps := &Dependencies{Metrics: metrics.New("shipping")}

	// -------- 数据库 --------
	db, err := database.Open(database.Options{
		DSN:          cfg.Database.DSN,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        cfg.App.Env == "dev" && cfg.App.LogLevel == "debug",
	}, lg)
	if err != nil {
		return nil, err
	}
	deps.DB = db
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, fmt.Errorf("注册审计回调失败: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.QuickInit(db, lg, model.ShippingModels()); err != nil {
			return nil, fmt.Errorf("数据库初始化失败: %w", err)
		}
	}

	// -------- 缓存 --------
	store, err := initCacheStore(cfg, lg, deps)
	if err != nil {
		return nil, err
	}
	deps.Cache = cache.New(store, lg, cfg.CacheTTL.TTLs())
	deps.Cache.SetObserver(deps.Metrics)

	// -------- Repo 层 --------
	repos := service.ShippingRepositories{
		Zone:         repository.NewZoneRepository(db),
		Tier:         repository.NewWeightTierRepository(db),
		Method:       repository.NewDeliveryMethodRepository(db),
		Rate:         repository.NewShippingRateRepository(db),
		ExtraWeight:  repository.NewExtraWeightChargeRepository(db),
		FreeShipping: repository.NewFreeShippingRuleRepository(db),
		Discount:     repository.NewDiscountRuleRepository(db),
		COD:          repository.NewCODSettingRepository(db),
	}

	// -------- 业务服务 --------
	engineCfg, err := service.EngineConfigFrom(cfg.Shipping)
	if err != nil {
		return nil, err
	}
	deps.Services = &Services{
		Quote:  service.NewQuoteService(repos, deps.Cache, lg, deps.Metrics, engineCfg),
		Config: service.NewShippingConfigService(repos.Rate, deps.Cache, lg),
	}
	return deps, nil
}

// initCacheStore 启用 Redis 时使用带熔断的 Redis 存储，否则使用进程内缓存
func initCacheStore(cfg *config.Config, lg logger.Logger, deps *Dependencies) (cache.Store, error) {
	if !cfg.Redis.Enabled {
		lg.Infof(context.Background(), "[Cache] 未启用 Redis，使用进程内缓存")
		return cache.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// 缓存不可用不阻止启动，熔断器会让请求直接回源
		lg.Warnf(ctx, "[Cache] Redis 连接失败 %s: %v", cfg.Redis.Addr, err)
	}
	deps.Redis = client

	return cache.NewRedisStore(client, cache.DefaultBreakerConfig(), cfg.CacheTTL.TTLs().Max(),
		func(name string, from, to gobreaker.State) {
			lg.Warnf(context.Background(), "[Cache] 熔断器 %s: %s -> %s", name, from, to)
		}), nil
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, lg logger.Logger, deps *Dependencies) error {
	if !cfg.Tasks.CacheWarmEnabled {
		return nil
	}

	quote := deps.Services.Quote
	warm := task.NewCacheWarmTask(lg, cfg.Tasks.CacheWarmSpec)
	warm.Register("zones", quote.Zones()).
		Register("tiers", quote.Tiers()).
		Register("methods", quote.Methods())

	if err := warm.Start(); err != nil {
		return err
	}
	deps.Tasks = append(deps.Tasks, warm)
	return nil
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(port string, r *gin.Engine, lg logger.Logger) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		lg.Infof(context.Background(), "服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Errorf(context.Background(), "服务启动失败: %v", err)
			os.Exit(1)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Infof(context.Background(), "正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorf(ctx, "服务强制关闭: %v", err)
	}

	lg.Infof(context.Background(), "服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
