package service

import (
	"context"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// ShippingConfigService 运营侧配置维护与缓存失效
type ShippingConfigService struct {
	rateRepo repository.ShippingRateRepository
	cache    *cache.Cache
	log      logger.Logger
}

func NewShippingConfigService(rateRepo repository.ShippingRateRepository, c *cache.Cache, log logger.Logger) *ShippingConfigService {
	return &ShippingConfigService{rateRepo: rateRepo, cache: c, log: log}
}

// UpsertRate 新增或更新一条运费，并失效运费缓存
func (s *ShippingConfigService) UpsertRate(ctx context.Context, rate *model.ShippingRate) error {
	if rate.ZoneID <= 0 || rate.WeightTierID <= 0 || rate.DeliveryMethodID <= 0 {
		return errorx.InvalidInput("zone_id、weight_tier_id、delivery_method_id 必须为正数")
	}
	if rate.ProducerID != nil && *rate.ProducerID <= 0 {
		return errorx.InvalidInput("producer_id 必须为正数: %d", *rate.ProducerID)
	}
	if rate.Price.IsNegative() {
		return errorx.InvalidInput("运费不能为负: %s", rate.Price)
	}

	if err := s.rateRepo.Upsert(ctx, rate); err != nil {
		return errorx.Transient("保存运费失败", err)
	}

	if err := s.cache.ForgetCategories(ctx, cache.CategoryRates); err != nil {
		s.log.Warnf(ctx, "[Config] 失效运费缓存失败: %v", err)
	}
	s.log.Infof(ctx, "[Config] 运费已更新 id=%d zone=%d tier=%d method=%d price=%s",
		rate.ID, rate.ZoneID, rate.WeightTierID, rate.DeliveryMethodID, rate.Price)
	return nil
}

// FlushCache 按类别失效缓存；为空时失效全部，返回实际失效的类别
func (s *ShippingConfigService) FlushCache(ctx context.Context, names []string) ([]cache.Category, error) {
	cats, err := ParseCategories(names)
	if err != nil {
		return nil, err
	}
	if err := s.cache.ForgetCategories(ctx, cats...); err != nil {
		return nil, errorx.Transient("失效缓存失败", err)
	}
	s.log.Infof(ctx, "[Config] 已失效缓存类别 %v", cats)
	return cats, nil
}

// FlushProducer 失效某生产者的派生缓存
func (s *ShippingConfigService) FlushProducer(ctx context.Context, producerID int64) error {
	if producerID <= 0 {
		return errorx.InvalidInput("producer_id 必须为正数: %d", producerID)
	}
	if err := s.cache.ForgetProducer(ctx, producerID); err != nil {
		return errorx.Transient("失效生产者缓存失败", err)
	}
	s.log.Infof(ctx, "[Config] 已失效生产者 %d 的缓存", producerID)
	return nil
}

// ParseCategories 校验类别名；为空时返回全部类别
func ParseCategories(names []string) ([]cache.Category, error) {
	if len(names) == 0 {
		return cache.AllCategories(), nil
	}
	known := make(map[cache.Category]struct{})
	for _, cat := range cache.AllCategories() {
		known[cat] = struct{}{}
	}
	cats := make([]cache.Category, 0, len(names))
	for _, name := range names {
		cat := cache.Category(name)
		if _, ok := known[cat]; !ok {
			return nil, errorx.InvalidInput("未知的缓存类别: %s", name)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}
