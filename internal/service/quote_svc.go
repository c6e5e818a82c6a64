package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/config"
	"marketplace_shipping_v1/internal/metrics"
	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// EngineConfig 运费引擎参数
type EngineConfig struct {
	DefaultZoneID               int64
	VolumetricDivisor           float64
	ExtraWeightThresholdGrams   int64
	DefaultExtraWeightRatePerKg decimal.Decimal
	DefaultCODCost              decimal.Decimal
	Currency                    string
}

// DefaultEngineConfig 默认参数
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultZoneID:               1,
		VolumetricDivisor:           DefaultVolumetricDivisor,
		ExtraWeightThresholdGrams:   DefaultExtraWeightThresholdGrams,
		DefaultExtraWeightRatePerKg: decimal.RequireFromString("0.90"),
		DefaultCODCost:              DefaultCODCost,
		Currency:                    "EUR",
	}
}

// EngineConfigFrom 从应用配置构建引擎参数
func EngineConfigFrom(c config.ShippingConfig) (EngineConfig, error) {
	rate, err := decimal.NewFromString(c.DefaultExtraWeightRatePerKg)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid shipping.default_extra_weight_rate_per_kg %q: %w", c.DefaultExtraWeightRatePerKg, err)
	}
	cod, err := decimal.NewFromString(c.DefaultCODCost)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid shipping.default_cod_cost %q: %w", c.DefaultCODCost, err)
	}
	return EngineConfig{
		DefaultZoneID:               c.DefaultZoneID,
		VolumetricDivisor:           c.VolumetricDivisor,
		ExtraWeightThresholdGrams:   c.ExtraWeightThresholdGrams,
		DefaultExtraWeightRatePerKg: rate,
		DefaultCODCost:              cod,
		Currency:                    c.Currency,
	}, nil
}

// ShippingRepositories 引擎依赖的配置表仓储
type ShippingRepositories struct {
	Zone         repository.ZoneRepository
	Tier         repository.WeightTierRepository
	Method       repository.DeliveryMethodRepository
	Rate         repository.ShippingRateRepository
	ExtraWeight  repository.ExtraWeightChargeRepository
	FreeShipping repository.FreeShippingRuleRepository
	Discount     repository.DiscountRuleRepository
	COD          repository.CODSettingRepository
}

// QuoteService 运费报价编排
type QuoteService struct {
	zones        *ZoneService
	tiers        *TierService
	methods      *MethodService
	rates        *RateService
	surcharges   *SurchargeService
	freeShipping *FreeShippingService
	discounts    *DiscountService
	cod          *CODService

	metrics *metrics.Metrics
	log     logger.Logger
	cfg     EngineConfig
}

func NewQuoteService(repos ShippingRepositories, c *cache.Cache, log logger.Logger, m *metrics.Metrics, cfg EngineConfig) *QuoteService {
	return &QuoteService{
		zones:        NewZoneService(repos.Zone, c, log, cfg.DefaultZoneID),
		tiers:        NewTierService(repos.Tier, c, log),
		methods:      NewMethodService(repos.Method, c, log),
		rates:        NewRateService(repos.Rate, c, log),
		surcharges:   NewSurchargeService(repos.ExtraWeight, c, log, cfg.ExtraWeightThresholdGrams, cfg.DefaultExtraWeightRatePerKg),
		freeShipping: NewFreeShippingService(repos.FreeShipping, c, log),
		discounts:    NewDiscountService(repos.Discount, c, log),
		cod:          NewCODService(repos.COD, c, log, cfg.DefaultCODCost),
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
}

func (s *QuoteService) Zones() *ZoneService     { return s.zones }
func (s *QuoteService) Tiers() *TierService     { return s.tiers }
func (s *QuoteService) Methods() *MethodService { return s.methods }

// producerResult 单个生产者的定价结果；err 非空时视为无可用选项
type producerResult struct {
	producerID int64
	quote      *ProducerQuote
	err        error
}

// ==================== 报价 ====================

// Quote 计算整单报价。无可配送选项是正常结果（空生产者列表），
// 只有输入非法与配置错误才返回 error
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	start := time.Now()
	quoteID := uuid.NewString()
	ctx = logger.WithQuoteID(ctx, quoteID)

	quote, err := s.quote(ctx, quoteID, req)
	if s.metrics != nil {
		s.metrics.ObserveQuote(quoteOutcome(quote, err), time.Since(start))
	}
	return quote, err
}

func quoteOutcome(q *Quote, err error) string {
	switch {
	case errorx.IsInvalidInput(err):
		return metrics.OutcomeInvalid
	case err != nil:
		return metrics.OutcomeError
	case !q.Available():
		return metrics.OutcomeUnavailable
	case len(q.ExcludedProducers) > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeOK
	}
}

func (s *QuoteService) quote(ctx context.Context, quoteID string, req QuoteRequest) (*Quote, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	groups, producerIDs := s.groupByProducer(ctx, req.Lines)

	zoneID, err := s.zones.Resolve(ctx, req.PostalCode)
	if err != nil {
		return nil, err
	}

	results := make([]producerResult, 0, len(producerIDs))
	for _, producerID := range producerIDs {
		results = append(results, s.priceProducer(ctx, zoneID, producerID, groups[producerID]))
	}

	result := &Quote{
		QuoteID:           quoteID,
		ZoneID:            zoneID,
		Currency:          s.cfg.Currency,
		Producers:         make([]ProducerQuote, 0, len(results)),
		ExcludedProducers: []int64{},
		CODRequested:      req.CODRequested,
		CODCost:           decimal.Zero,
	}

	for _, r := range results {
		if r.err != nil {
			if errorx.IsConfiguration(r.err) {
				return nil, r.err
			}
			s.log.Errorf(ctx, "[Quote] 生产者 %d 定价失败 zone=%d chargeable=%dg: %v",
				r.producerID, zoneID, r.quote.ChargeableWeightGrams, r.err)
			result.ExcludedProducers = append(result.ExcludedProducers, r.producerID)
			continue
		}
		if len(r.quote.Options) == 0 {
			s.log.Warnf(ctx, "[Quote] 生产者 %d 在区域 %d 无可用配送方式 chargeable=%dg",
				r.producerID, zoneID, r.quote.ChargeableWeightGrams)
			result.ExcludedProducers = append(result.ExcludedProducers, r.producerID)
			continue
		}
		result.Producers = append(result.Producers, *r.quote)
	}

	if !result.Available() {
		s.log.Infof(ctx, "[Quote] 订单无可配送选项 zone=%d producers=%d", zoneID, len(producerIDs))
		return result, nil
	}

	if len(result.Producers) > 1 {
		s.discounts.Apply(ctx, result.Producers, len(producerIDs))
	}

	result.CODApplied, result.CODCost = s.cod.Resolve(ctx, req.CODRequested, result.Producers)
	return result, nil
}

// 单个订单的输入上限，超出视为畸形输入
const (
	MaxOrderWeightGrams int64 = 1_000_000_000 // 1000 吨
	MaxDimensionCm            = 100_000.0     // 1 公里
)

// validateRequest 拒绝畸形输入；整单实重（单重 × 数量累加）不得超过 MaxOrderWeightGrams，
// 保证后续按生产者汇总时不会溢出
func validateRequest(req QuoteRequest) error {
	if len(req.Lines) == 0 {
		return errorx.InvalidInput("购物车为空")
	}
	var totalGrams int64
	for i, line := range req.Lines {
		switch {
		case line.Quantity <= 0:
			return errorx.InvalidInput("第 %d 行数量必须大于 0: %d", i+1, line.Quantity)
		case line.UnitWeightGrams < 0:
			return errorx.InvalidInput("第 %d 行重量不能为负: %d", i+1, line.UnitWeightGrams)
		case line.UnitWeightGrams > 0 && int64(line.Quantity) > (MaxOrderWeightGrams-totalGrams)/line.UnitWeightGrams:
			return errorx.InvalidInput("第 %d 行累计重量超出上限 %d 克", i+1, MaxOrderWeightGrams)
		case line.LengthCm > MaxDimensionCm || line.WidthCm > MaxDimensionCm || line.HeightCm > MaxDimensionCm:
			return errorx.InvalidInput("第 %d 行尺寸超出上限 %.0f 厘米", i+1, MaxDimensionCm)
		case line.UnitPrice.IsNegative():
			return errorx.InvalidInput("第 %d 行单价不能为负: %s", i+1, line.UnitPrice)
		case line.DiscountPrice != nil && line.DiscountPrice.IsNegative():
			return errorx.InvalidInput("第 %d 行折扣价不能为负: %s", i+1, *line.DiscountPrice)
		case line.LengthCm < 0 || line.WidthCm < 0 || line.HeightCm < 0:
			return errorx.InvalidInput("第 %d 行尺寸不能为负", i+1)
		}
		totalGrams += line.UnitWeightGrams * int64(line.Quantity)
	}
	return nil
}

// groupByProducer 按生产者分组，跳过非法生产者 ID；返回的 ID 升序
func (s *QuoteService) groupByProducer(ctx context.Context, lines []ShipmentLine) (map[int64][]ShipmentLine, []int64) {
	groups := make(map[int64][]ShipmentLine)
	ids := make([]int64, 0)
	for _, line := range lines {
		if line.ProducerID <= 0 {
			s.log.Warnf(ctx, "[Quote] 跳过生产者 ID 非法的行 product=%d producer=%d", line.ProductID, line.ProducerID)
			continue
		}
		if _, ok := groups[line.ProducerID]; !ok {
			ids = append(ids, line.ProducerID)
		}
		groups[line.ProducerID] = append(groups[line.ProducerID], line)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return groups, ids
}

// priceProducer 为单个生产者定价，panic 也转为该生产者的错误
func (s *QuoteService) priceProducer(ctx context.Context, zoneID, producerID int64, lines []ShipmentLine) (res producerResult) {
	shipment := AggregateShipment(producerID, lines)
	weights := Weigh(shipment, s.cfg.VolumetricDivisor)
	pq := &ProducerQuote{
		ProducerID:            producerID,
		ZoneID:                zoneID,
		RealWeightGrams:       weights.Real,
		VolumetricWeightGrams: weights.Volumetric,
		ChargeableWeightGrams: weights.Chargeable,
		ShipmentValue:         shipment.Value,
		Options:               []ShippingOption{},
	}
	res = producerResult{producerID: producerID, quote: pq}

	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic while pricing producer %d: %v", producerID, r)
		}
	}()

	res.err = s.priceOptions(ctx, pq, shipment)
	return res
}

func (s *QuoteService) priceOptions(ctx context.Context, pq *ProducerQuote, shipment Shipment) error {
	tier, err := s.tiers.Resolve(ctx, pq.ChargeableWeightGrams)
	if err != nil {
		return err
	}
	pq.WeightTierID = tier.ID

	methods, err := s.methods.ProducerMethods(ctx, pq.ProducerID)
	if err != nil {
		return err
	}
	if len(methods) == 0 {
		s.log.Warnf(ctx, "[Quote] 生产者 %d 未启用任何有效配送方式", pq.ProducerID)
		return nil
	}

	for _, m := range methods {
		if ok, reason := CheckMethodValidity(m, shipment, pq.ChargeableWeightGrams); !ok {
			s.log.Debugf(ctx, "[Quote] 生产者 %d 配送方式 %s 不适用: %s", pq.ProducerID, m.Code, reason)
			s.excluded(reason)
			continue
		}

		opt := ShippingOption{
			MethodID:    m.ID,
			Code:        m.Code,
			Name:        m.Name,
			Cost:        decimal.Zero,
			BaseCost:    decimal.Zero,
			Surcharge:   decimal.Zero,
			SupportsCOD: m.SupportsCOD,
		}

		free := s.freeShipping.Evaluate(ctx, pq.ProducerID, pq.ZoneID, m.ID, shipment.Value)
		if free.Qualifies {
			opt.IsFree = true
			pq.Options = append(pq.Options, opt)
			continue
		}

		key := RateKey{ZoneID: pq.ZoneID, WeightTierID: pq.WeightTierID, MethodID: m.ID, ProducerID: pq.ProducerID}
		rate := s.rates.Resolve(ctx, key)
		if !rate.Found {
			s.log.Warnf(ctx, "[Quote] 无运费配置，跳过配送方式 %s: %s", m.Code, key)
			s.excluded(ExcludeNoRate)
			continue
		}

		opt.BaseCost = rate.Price
		opt.Surcharge = s.surcharges.Resolve(ctx, pq.ZoneID, m.ID, pq.ChargeableWeightGrams)
		opt.Cost = opt.BaseCost.Add(opt.Surcharge).Round(2)
		pq.Options = append(pq.Options, opt)
	}

	sortOptions(pq.Options)
	return nil
}

func (s *QuoteService) excluded(reason string) {
	if s.metrics != nil {
		s.metrics.MethodExcluded(reason)
	}
}

// sortOptions 按最终价格升序，同价按配送方式 ID
func sortOptions(options []ShippingOption) {
	sort.SliceStable(options, func(i, j int) bool {
		if c := options[i].Cost.Cmp(options[j].Cost); c != 0 {
			return c < 0
		}
		return options[i].MethodID < options[j].MethodID
	})
}
