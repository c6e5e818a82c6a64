package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// 运费来源
const (
	RateSourceOverride = "producer_override"
	RateSourceDefault  = "default"
)

// RateKey 运费查询键
type RateKey struct {
	ZoneID       int64
	WeightTierID int64
	MethodID     int64
	ProducerID   int64
}

func (k RateKey) String() string {
	return fmt.Sprintf("zone=%d tier=%d method=%d producer=%d", k.ZoneID, k.WeightTierID, k.MethodID, k.ProducerID)
}

// RateResult 运费查询结果；Found 为 false 表示该配送方式不可用
type RateResult struct {
	Found  bool            `json:"found"`
	Price  decimal.Decimal `json:"price"`
	Source string          `json:"source,omitempty"`
}

// RateService 基础运费：生产者覆盖价优先，其次默认价
type RateService struct {
	repo  repository.ShippingRateRepository
	cache *cache.Cache
	log   logger.Logger
}

func NewRateService(repo repository.ShippingRateRepository, c *cache.Cache, log logger.Logger) *RateService {
	return &RateService{repo: repo, cache: c, log: log}
}

// Resolve 查询基础运费；查询失败记日志并按未找到处理
func (s *RateService) Resolve(ctx context.Context, key RateKey) RateResult {
	cacheKey := cache.Key(cache.CategoryRates, key.ZoneID, key.WeightTierID, key.MethodID, key.ProducerID)
	res, err := cache.Remember(ctx, s.cache, cache.CategoryRates, cacheKey,
		[]string{cache.ProducerTag(key.ProducerID)},
		func(ctx context.Context) (RateResult, error) {
			return s.lookup(ctx, key)
		})
	if err != nil {
		s.log.Errorf(ctx, "[Rate] 查询运费失败 %s: %v", key, err)
		return RateResult{}
	}
	return res
}

func (s *RateService) lookup(ctx context.Context, key RateKey) (RateResult, error) {
	producerID := key.ProducerID
	byProducer := func(producer *int64) func(context.Context) (decimal.Decimal, bool, error) {
		return func(ctx context.Context) (decimal.Decimal, bool, error) {
			rate, err := s.repo.FindRate(ctx, key.ZoneID, key.WeightTierID, key.MethodID, producer)
			ok, err := found(err)
			if !ok {
				return decimal.Zero, false, err
			}
			return rate.Price, true, nil
		}
	}

	price, source, ok, err := firstMatch(ctx,
		lookupStep[decimal.Decimal]{name: RateSourceOverride, find: byProducer(&producerID)},
		lookupStep[decimal.Decimal]{name: RateSourceDefault, find: byProducer(nil)},
	)
	if err != nil {
		return RateResult{}, errorx.Transient("查询运费表失败", err)
	}
	if !ok {
		return RateResult{Found: false}, nil
	}
	return RateResult{Found: true, Price: price, Source: source}, nil
}
