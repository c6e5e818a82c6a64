package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/api/dto"
	"marketplace_shipping_v1/internal/service"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

type QuoteController struct {
	quoteSvc *service.QuoteService
	log      logger.Logger
}

func NewQuoteController(quoteSvc *service.QuoteService, log logger.Logger) *QuoteController {
	return &QuoteController{
		quoteSvc: quoteSvc,
		log:      log,
	}
}

// CreateQuote 计算运费报价
// @Summary 计算运费报价
// @Description 按生产者分组计算每个生产者的可用配送方式与价格，并给出整单货到付款手续费
// @Tags Shipping (运费)
// @Accept json
// @Produce json
// @Param body body dto.QuoteReq true "购物车与目的地"
// @Success 200 {object} dto.QuoteResp "报价结果，producers 为空表示无可配送选项"
// @Failure 400 {object} dto.ErrorResp "输入非法"
// @Failure 500 {object} dto.ErrorResp "运费配置缺失"
// @Router /api/v1/shipping/quotes [post]
func (c *QuoteController) CreateQuote(ctx *gin.Context) {
	var req dto.QuoteReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResp{Error: err.Error(), Kind: errorx.KindInvalidInput.String()})
		return
	}

	quote, err := c.quoteSvc.Quote(ctx.Request.Context(), toQuoteRequest(req))
	if err != nil {
		writeError(ctx, c.log, "QuoteCtl", err)
		return
	}

	ctx.JSON(http.StatusOK, toQuoteResp(quote))
}

// ResolveZone 邮编解析配送区域
// @Summary 邮编解析配送区域
// @Tags Shipping (运费)
// @Produce json
// @Param postal_code query string false "邮编"
// @Success 200 {object} dto.ZoneResolveResp "区域"
// @Failure 500 {object} dto.ErrorResp "未配置默认区域"
// @Router /api/v1/shipping/zones/resolve [get]
func (c *QuoteController) ResolveZone(ctx *gin.Context) {
	postalCode := ctx.Query("postal_code")

	zoneID, err := c.quoteSvc.Zones().Resolve(ctx.Request.Context(), postalCode)
	if err != nil {
		writeError(ctx, c.log, "QuoteCtl", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ZoneResolveResp{
		PostalCode: postalCode,
		Normalized: service.NormalizePostalCode(postalCode),
		ZoneID:     zoneID,
	})
}

// writeError 按错误分类映射状态码；5xx 记错误日志
func writeError(ctx *gin.Context, log logger.Logger, tag string, err error) {
	status := errorx.HTTPStatus(err)
	resp := dto.ErrorResp{Error: err.Error()}
	var e *errorx.Error
	if errors.As(err, &e) {
		resp.Kind = e.Kind.String()
	}
	if status >= http.StatusInternalServerError {
		log.Errorf(ctx.Request.Context(), "[%s] 请求失败: %v", tag, err)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, resp)
}

// ==================== 转换 ====================

func toQuoteRequest(req dto.QuoteReq) service.QuoteRequest {
	lines := make([]service.ShipmentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.ShipmentLine{
			ProductID:       l.ProductID,
			ProducerID:      l.ProducerID,
			Quantity:        l.Quantity,
			UnitWeightGrams: l.UnitWeightGrams,
			UnitPrice:       l.UnitPrice,
			DiscountPrice:   l.DiscountPrice,
			LengthCm:        l.LengthCm,
			WidthCm:         l.WidthCm,
			HeightCm:        l.HeightCm,
			IsPerishable:    l.IsPerishable,
			IsFragile:       l.IsFragile,
		})
	}
	return service.QuoteRequest{
		Lines:        lines,
		PostalCode:   req.PostalCode,
		CODRequested: req.CODRequested,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func toQuoteResp(q *service.Quote) dto.QuoteResp {
	producers := make([]dto.ProducerQuoteResp, 0, len(q.Producers))
	for _, pq := range q.Producers {
		options := make([]dto.ShippingOptionResp, 0, len(pq.Options))
		for _, opt := range pq.Options {
			options = append(options, dto.ShippingOptionResp{
				MethodID:           opt.MethodID,
				Code:               opt.Code,
				Name:               opt.Name,
				Cost:               money(opt.Cost),
				BaseCost:           money(opt.BaseCost),
				Surcharge:          money(opt.Surcharge),
				IsFree:             opt.IsFree,
				OriginalCost:       optionalMoney(opt.OriginalCost),
				DiscountPercentage: optionalMoney(opt.DiscountPercentage),
				SupportsCOD:        opt.SupportsCOD,
			})
		}
		producers = append(producers, dto.ProducerQuoteResp{
			ProducerID:            pq.ProducerID,
			ZoneID:                pq.ZoneID,
			WeightTierID:          pq.WeightTierID,
			RealWeightGrams:       pq.RealWeightGrams,
			VolumetricWeightGrams: pq.VolumetricWeightGrams,
			ChargeableWeightGrams: pq.ChargeableWeightGrams,
			ShipmentValue:         money(pq.ShipmentValue),
			Options:               options,
		})
	}

	excluded := q.ExcludedProducers
	if excluded == nil {
		excluded = []int64{}
	}
	return dto.QuoteResp{
		QuoteID:           q.QuoteID,
		ZoneID:            q.ZoneID,
		Currency:          q.Currency,
		Producers:         producers,
		ExcludedProducers: excluded,
		CODRequested:      q.CODRequested,
		CODApplied:        q.CODApplied,
		CODCost:           money(q.CODCost),
	}
}
