package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "marketplace_shipping_v1/docs"
	"marketplace_shipping_v1/internal/controller"
	"marketplace_shipping_v1/internal/metrics"
	"marketplace_shipping_v1/internal/middleware"
	"marketplace_shipping_v1/pkg/logger"
)

// Deps 路由依赖
type Deps struct {
	Log       logger.Logger
	Metrics   *metrics.Metrics
	QuoteCtl  *controller.QuoteController
	ConfigCtl *controller.ShippingConfigController

	Operator       middleware.OperatorAuthConfig // 密钥为空时不注册运营接口
	FlushLimiter   *middleware.CooldownLimiter
	FlushCooldown  time.Duration
	RequestTimeout time.Duration
	Health         func(ctx context.Context) error
}

// NewEngine 创建带全局中间件的 gin 引擎
func NewEngine(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(deps.Log, deps.Metrics))

	InitRoutes(r, deps)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, deps Deps) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 运维路由
	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// 3. API 路由组
	shipping := r.Group("/api/v1/shipping", middleware.RequestTimeout(deps.RequestTimeout))
	{
		// POST /api/v1/shipping/quotes
		shipping.POST("/quotes", deps.QuoteCtl.CreateQuote)
		// GET /api/v1/shipping/zones/resolve?postal_code=
		shipping.GET("/zones/resolve", deps.QuoteCtl.ResolveZone)
	}

	// 运营接口
	if deps.Operator.SecretKey == "" || deps.ConfigCtl == nil {
		deps.Log.Warnf(context.Background(), "[Router] 未配置运营密钥，运营接口未注册")
		return
	}
	limiter := deps.FlushLimiter
	if limiter == nil {
		limiter = middleware.NewCooldownLimiter(nil)
	}
	admin := shipping.Group("", middleware.OperatorAuth(deps.Operator), middleware.AuditContext())
	{
		// PUT /api/v1/shipping/rates
		admin.PUT("/rates", deps.ConfigCtl.UpsertRate)
		// POST /api/v1/shipping/cache/flush
		admin.POST("/cache/flush",
			middleware.Cooldown(limiter, "cache_flush", deps.FlushCooldown),
			deps.ConfigCtl.FlushCache,
		)
	}
}
