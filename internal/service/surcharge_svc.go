package service

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// DefaultExtraWeightThresholdGrams 超重起算阈值
const DefaultExtraWeightThresholdGrams = 10000

type extraWeightRate struct {
	Found      bool            `json:"found"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
}

// SurchargeService 超重附加费
type SurchargeService struct {
	repo           repository.ExtraWeightChargeRepository
	cache          *cache.Cache
	log            logger.Logger
	thresholdGrams int64
	fallbackRate   decimal.Decimal
}

func NewSurchargeService(repo repository.ExtraWeightChargeRepository, c *cache.Cache, log logger.Logger, thresholdGrams int64, fallbackRate decimal.Decimal) *SurchargeService {
	return &SurchargeService{
		repo:           repo,
		cache:          c,
		log:            log,
		thresholdGrams: thresholdGrams,
		fallbackRate:   fallbackRate,
	}
}

// ExcessKg 超出阈值的部分按整公斤向上取整
func ExcessKg(chargeableGrams, thresholdGrams int64) int64 {
	if chargeableGrams <= thresholdGrams {
		return 0
	}
	return (chargeableGrams - thresholdGrams + 999) / 1000
}

// Resolve 计算附加费；不超阈值为 0
func (s *SurchargeService) Resolve(ctx context.Context, zoneID, methodID, chargeableGrams int64) decimal.Decimal {
	kg := ExcessKg(chargeableGrams, s.thresholdGrams)
	if kg == 0 {
		return decimal.Zero
	}
	return s.RatePerKg(ctx, zoneID, methodID).Mul(decimal.NewFromInt(kg)).Round(2)
}

// RatePerKg 续重单价：区域+配送方式 > 区域通用 > 全局默认
func (s *SurchargeService) RatePerKg(ctx context.Context, zoneID, methodID int64) decimal.Decimal {
	cacheKey := cache.Key(cache.CategoryExtraWeight, zoneID, methodID)
	res, err := cache.Remember(ctx, s.cache, cache.CategoryExtraWeight, cacheKey, nil,
		func(ctx context.Context) (extraWeightRate, error) {
			byMethod := func(method *int64) func(context.Context) (decimal.Decimal, bool, error) {
				return func(ctx context.Context) (decimal.Decimal, bool, error) {
					charge, err := s.repo.FindActive(ctx, zoneID, method)
					ok, err := found(err)
					if !ok {
						return decimal.Zero, false, err
					}
					return charge.PricePerKg, true, nil
				}
			}
			price, _, ok, err := firstMatch(ctx,
				lookupStep[decimal.Decimal]{name: "zone_method", find: byMethod(&methodID)},
				lookupStep[decimal.Decimal]{name: "zone", find: byMethod(nil)},
			)
			if err != nil {
				return extraWeightRate{}, errorx.Transient("查询续重单价失败", err)
			}
			return extraWeightRate{Found: ok, PricePerKg: price}, nil
		})
	if err != nil {
		s.log.Warnf(ctx, "[Surcharge] 查询续重单价失败 zone=%d method=%d，使用默认单价 %s: %v",
			zoneID, methodID, s.fallbackRate, err)
		return s.fallbackRate
	}
	if !res.Found {
		return s.fallbackRate
	}
	return res.PricePerKg
}
