package service

import (
	"context"
	"sort"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// 配送方式被过滤的原因
const (
	ExcludeMaxWeight  = "max_weight"
	ExcludeMaxLength  = "max_length"
	ExcludeMaxWidth   = "max_width"
	ExcludeMaxHeight  = "max_height"
	ExcludePerishable = "perishable"
	ExcludeFragile    = "fragile"
	ExcludeNoRate     = "no_rate"
)

// MethodService 配送方式目录与生产者启用关系
type MethodService struct {
	repo  repository.DeliveryMethodRepository
	cache *cache.Cache
	log   logger.Logger
}

func NewMethodService(repo repository.DeliveryMethodRepository, c *cache.Cache, log logger.Logger) *MethodService {
	return &MethodService{repo: repo, cache: c, log: log}
}

// ActiveMethods 所有启用的配送方式（按 ID 升序）；
// 配送方式表完全为空视为配置错误，全部停用则只是返回空列表
func (s *MethodService) ActiveMethods(ctx context.Context) ([]model.DeliveryMethod, error) {
	return cache.Remember(ctx, s.cache, cache.CategoryMethods, cache.Key(cache.CategoryMethods, "active"), nil,
		func(ctx context.Context) ([]model.DeliveryMethod, error) {
			methods, err := s.repo.ListActive(ctx)
			if err != nil {
				return nil, errorx.Transient("查询配送方式失败", err)
			}
			if len(methods) == 0 {
				total, err := s.repo.Count(ctx)
				if err != nil {
					return nil, errorx.Transient("统计配送方式失败", err)
				}
				if total == 0 {
					return nil, errorx.Configuration("配送方式表为空")
				}
			}
			sort.Slice(methods, func(i, j int) bool { return methods[i].ID < methods[j].ID })
			return methods, nil
		})
}

// EnabledMethodIDs 生产者启用的配送方式 ID
func (s *MethodService) EnabledMethodIDs(ctx context.Context, producerID int64) ([]int64, error) {
	return cache.Remember(ctx, s.cache, cache.CategoryMethods,
		cache.Key(cache.CategoryMethods, "producer", producerID),
		[]string{cache.ProducerTag(producerID)},
		func(ctx context.Context) ([]int64, error) {
			ids, err := s.repo.ListEnabledIDsForProducer(ctx, producerID)
			if err != nil {
				return nil, errorx.Transient("查询生产者配送方式失败", err)
			}
			return ids, nil
		})
}

// ProducerMethods 生产者启用且全局有效的配送方式
func (s *MethodService) ProducerMethods(ctx context.Context, producerID int64) ([]model.DeliveryMethod, error) {
	active, err := s.ActiveMethods(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.EnabledMethodIDs(ctx, producerID)
	if err != nil {
		return nil, err
	}

	enabled := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		enabled[id] = struct{}{}
	}
	result := make([]model.DeliveryMethod, 0, len(ids))
	for _, m := range active {
		if _, ok := enabled[m.ID]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

// Warm 预热配送方式目录
func (s *MethodService) Warm(ctx context.Context) error {
	_, err := s.ActiveMethods(ctx)
	return err
}

// CheckMethodValidity 判断配送方式能否承运该包裹，不能时返回原因；
// 未设置的上限不做约束
func CheckMethodValidity(m model.DeliveryMethod, s Shipment, chargeableGrams int64) (bool, string) {
	if m.MaxWeightGrams != nil && chargeableGrams > *m.MaxWeightGrams {
		return false, ExcludeMaxWeight
	}
	if m.MaxLengthCm != nil && s.LengthCm > *m.MaxLengthCm {
		return false, ExcludeMaxLength
	}
	if m.MaxWidthCm != nil && s.WidthCm > *m.MaxWidthCm {
		return false, ExcludeMaxWidth
	}
	if m.MaxHeightCm != nil && s.HeightCm > *m.MaxHeightCm {
		return false, ExcludeMaxHeight
	}
	if s.HasPerishable && !m.SuitableForPerishable {
		return false, ExcludePerishable
	}
	if s.HasFragile && !m.SuitableForFragile {
		return false, ExcludeFragile
	}
	return true, ""
}
