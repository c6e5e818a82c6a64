package service

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// DiscountRule 命中的多生产者折扣规则
type DiscountRule struct {
	Found        bool            `json:"found"`
	RuleID       int64           `json:"rule_id"`
	Percentage   decimal.Decimal `json:"percentage"`
	MinProducers int             `json:"min_producers"`
	Scope        string          `json:"scope"`
}

// DiscountService 多生产者运费折扣
type DiscountService struct {
	repo  repository.DiscountRuleRepository
	cache *cache.Cache
	log   logger.Logger
}

func NewDiscountService(repo repository.DiscountRuleRepository, c *cache.Cache, log logger.Logger) *DiscountService {
	return &DiscountService{repo: repo, cache: c, log: log}
}

// Find 生产者专属规则优先，其次默认规则；查询失败按无规则处理
func (s *DiscountService) Find(ctx context.Context, producerID, zoneID, tierID, methodID int64) DiscountRule {
	cacheKey := cache.Key(cache.CategoryDiscounts, producerID, zoneID, tierID, methodID)
	rule, err := cache.Remember(ctx, s.cache, cache.CategoryDiscounts, cacheKey,
		[]string{cache.ProducerTag(producerID)},
		func(ctx context.Context) (DiscountRule, error) {
			byProducer := func(producer *int64) func(context.Context) (DiscountRule, bool, error) {
				return func(ctx context.Context) (DiscountRule, bool, error) {
					r, err := s.repo.Find(ctx, producer, zoneID, tierID, methodID)
					ok, err := found(err)
					if !ok {
						return DiscountRule{}, false, err
					}
					return DiscountRule{
						Found:        true,
						RuleID:       r.ID,
						Percentage:   r.DiscountPercentage,
						MinProducers: r.MinProducersRequired,
					}, true, nil
				}
			}
			rule, scope, ok, err := firstMatch(ctx,
				lookupStep[DiscountRule]{name: "producer", find: byProducer(&producerID)},
				lookupStep[DiscountRule]{name: "default", find: byProducer(nil)},
			)
			if err != nil {
				return DiscountRule{}, errorx.Transient("查询折扣规则失败", err)
			}
			if !ok {
				return DiscountRule{Found: false}, nil
			}
			rule.Scope = scope
			return rule, nil
		})
	if err != nil {
		s.log.Warnf(ctx, "[Discount] 查询折扣规则失败 producer=%d zone=%d tier=%d method=%d: %v",
			producerID, zoneID, tierID, methodID, err)
		return DiscountRule{}
	}
	return rule
}

// ApplyDiscount 折后价 = max(0, cost - cost*pct/100)，保留两位
func ApplyDiscount(cost, percentage decimal.Decimal) decimal.Decimal {
	discounted := cost.Sub(cost.Mul(percentage).Div(decimal.NewFromInt(100))).Round(2)
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// Apply 对多生产者订单的每个选项应用折扣。
// 少于两个生产者有可用选项时不做任何查询；规则的最低生产者数与
// orderProducers（订单中不同生产者的总数，含被排除的）比较
func (s *DiscountService) Apply(ctx context.Context, producers []ProducerQuote, orderProducers int) {
	if len(producers) < 2 {
		return
	}

	for i := range producers {
		pq := &producers[i]
		for j := range pq.Options {
			opt := &pq.Options[j]
			if opt.Cost.IsZero() {
				continue
			}
			rule := s.Find(ctx, pq.ProducerID, pq.ZoneID, pq.WeightTierID, opt.MethodID)
			if !rule.Found || orderProducers < rule.MinProducers {
				continue
			}

			original := opt.Cost
			pct := rule.Percentage
			opt.OriginalCost = &original
			opt.DiscountPercentage = &pct
			opt.Cost = ApplyDiscount(original, pct)

			s.log.Debugf(ctx, "[Discount] 生产者 %d 配送方式 %d 折扣 %s%%: %s -> %s",
				pq.ProducerID, opt.MethodID, pct, original, opt.Cost)
		}
		sortOptions(pq.Options)
	}
}
