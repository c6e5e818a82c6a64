package service

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// 包邮规则匹配层级
const (
	FreeScopeZoneMethod = "zone_method"
	FreeScopeZone       = "zone"
	FreeScopeGlobal     = "global"
)

// FreeShippingDecision 包邮判定
type FreeShippingDecision struct {
	Qualifies bool
	RuleID    int64
	Threshold decimal.Decimal
	Scope     string
}

type freeShippingRule struct {
	Found     bool            `json:"found"`
	RuleID    int64           `json:"rule_id"`
	Threshold decimal.Decimal `json:"threshold"`
	Scope     string          `json:"scope"`
}

// FreeShippingService 生产者包邮门槛
type FreeShippingService struct {
	repo  repository.FreeShippingRuleRepository
	cache *cache.Cache
	log   logger.Logger
}

func NewFreeShippingService(repo repository.FreeShippingRuleRepository, c *cache.Cache, log logger.Logger) *FreeShippingService {
	return &FreeShippingService{repo: repo, cache: c, log: log}
}

// Evaluate 取最具体的生效规则，货值达到门槛（含等于）即包邮；
// 只指定配送方式、不指定区域的规则不参与匹配。查询失败按不包邮处理
func (s *FreeShippingService) Evaluate(ctx context.Context, producerID, zoneID, methodID int64, value decimal.Decimal) FreeShippingDecision {
	rule, err := s.rule(ctx, producerID, zoneID, methodID)
	if err != nil {
		s.log.Warnf(ctx, "[FreeShipping] 查询包邮规则失败 producer=%d zone=%d method=%d: %v", producerID, zoneID, methodID, err)
		return FreeShippingDecision{}
	}
	if !rule.Found {
		return FreeShippingDecision{}
	}
	return FreeShippingDecision{
		Qualifies: value.GreaterThanOrEqual(rule.Threshold),
		RuleID:    rule.RuleID,
		Threshold: rule.Threshold,
		Scope:     rule.Scope,
	}
}

func (s *FreeShippingService) rule(ctx context.Context, producerID, zoneID, methodID int64) (freeShippingRule, error) {
	cacheKey := cache.Key(cache.CategoryFreeShipping, producerID, zoneID, methodID)
	return cache.Remember(ctx, s.cache, cache.CategoryFreeShipping, cacheKey,
		[]string{cache.ProducerTag(producerID)},
		func(ctx context.Context) (freeShippingRule, error) {
			scoped := func(zone, method *int64) func(context.Context) (*model.ProducerFreeShippingRule, bool, error) {
				return func(ctx context.Context) (*model.ProducerFreeShippingRule, bool, error) {
					r, err := s.repo.FindActive(ctx, producerID, zone, method)
					ok, err := found(err)
					return r, ok, err
				}
			}
			r, scope, ok, err := firstMatch(ctx,
				lookupStep[*model.ProducerFreeShippingRule]{name: FreeScopeZoneMethod, find: scoped(&zoneID, &methodID)},
				lookupStep[*model.ProducerFreeShippingRule]{name: FreeScopeZone, find: scoped(&zoneID, nil)},
				lookupStep[*model.ProducerFreeShippingRule]{name: FreeScopeGlobal, find: scoped(nil, nil)},
			)
			if err != nil {
				return freeShippingRule{}, errorx.Transient("查询包邮规则失败", err)
			}
			if !ok {
				return freeShippingRule{Found: false}, nil
			}
			return freeShippingRule{Found: true, RuleID: r.ID, Threshold: r.Threshold, Scope: scope}, nil
		})
}
