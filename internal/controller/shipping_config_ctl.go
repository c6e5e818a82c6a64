package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_shipping_v1/internal/api/dto"
	"marketplace_shipping_v1/internal/middleware"
	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/internal/service"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

type ShippingConfigController struct {
	configSvc *service.ShippingConfigService
	log       logger.Logger
}

func NewShippingConfigController(configSvc *service.ShippingConfigService, log logger.Logger) *ShippingConfigController {
	return &ShippingConfigController{
		configSvc: configSvc,
		log:       log,
	}
}

// UpsertRate 新增或更新运费
// @Summary 新增或更新运费
// @Description 按 (区域, 档位, 配送方式, 生产者) 维护运费，保存后失效运费缓存
// @Tags ShippingConfig (运费配置)
// @Accept json
// @Produce json
// @Security OperatorToken
// @Param body body dto.UpsertRateReq true "运费"
// @Success 200 {object} dto.RateResp "保存后的运费"
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 401 {object} dto.ErrorResp "未认证"
// @Router /api/v1/shipping/rates [put]
func (c *ShippingConfigController) UpsertRate(ctx *gin.Context) {
	var req dto.UpsertRateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResp{Error: err.Error(), Kind: errorx.KindInvalidInput.String()})
		return
	}

	rate := &model.ShippingRate{
		ZoneID:           req.ZoneID,
		WeightTierID:     req.WeightTierID,
		DeliveryMethodID: req.DeliveryMethodID,
		ProducerID:       req.ProducerID,
		Price:            req.Price,
	}
	if err := c.configSvc.UpsertRate(ctx.Request.Context(), rate); err != nil {
		writeError(ctx, c.log, "ConfigCtl", err)
		return
	}

	c.log.Infof(ctx.Request.Context(), "[ConfigCtl] %s 更新运费 id=%d", middleware.GetOperator(ctx), rate.ID)
	ctx.JSON(http.StatusOK, dto.RateResp{
		ID:               rate.ID,
		ZoneID:           rate.ZoneID,
		WeightTierID:     rate.WeightTierID,
		DeliveryMethodID: rate.DeliveryMethodID,
		ProducerID:       rate.ProducerID,
		Price:            money(rate.Price),
	})
}

// FlushCache 失效运费缓存
// @Summary 失效运费缓存
// @Description 按类别失效缓存（为空则全部），可附带生产者 ID 失效该生产者的派生缓存
// @Tags ShippingConfig (运费配置)
// @Accept json
// @Produce json
// @Security OperatorToken
// @Param body body dto.FlushCacheReq false "失效范围"
// @Success 200 {object} dto.FlushCacheResp "已失效的类别"
// @Failure 400 {object} dto.ErrorResp "未知类别"
// @Failure 429 {object} dto.ErrorResp "冷却中"
// @Router /api/v1/shipping/cache/flush [post]
func (c *ShippingConfigController) FlushCache(ctx *gin.Context) {
	var req dto.FlushCacheReq
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResp{Error: err.Error(), Kind: errorx.KindInvalidInput.String()})
			return
		}
	}

	resp := dto.FlushCacheResp{Categories: []string{}}
	if req.ProducerID != nil {
		if err := c.configSvc.FlushProducer(ctx.Request.Context(), *req.ProducerID); err != nil {
			writeError(ctx, c.log, "ConfigCtl", err)
			return
		}
		resp.ProducerID = req.ProducerID
		if len(req.Categories) == 0 {
			ctx.JSON(http.StatusOK, resp)
			return
		}
	}

	cats, err := c.configSvc.FlushCache(ctx.Request.Context(), req.Categories)
	if err != nil {
		writeError(ctx, c.log, "ConfigCtl", err)
		return
	}
	for _, cat := range cats {
		resp.Categories = append(resp.Categories, string(cat))
	}

	c.log.Infof(ctx.Request.Context(), "[ConfigCtl] %s 失效缓存 %v", middleware.GetOperator(ctx), resp.Categories)
	ctx.JSON(http.StatusOK, resp)
}
