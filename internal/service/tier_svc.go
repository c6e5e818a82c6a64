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

// TierService 计费重 → 重量档位
type TierService struct {
	repo  repository.WeightTierRepository
	cache *cache.Cache
	log   logger.Logger
}

func NewTierService(repo repository.WeightTierRepository, c *cache.Cache, log logger.Logger) *TierService {
	return &TierService{repo: repo, cache: c, log: log}
}

// Tiers 按下限升序的档位表；表为空视为配置错误（不会被缓存）
func (s *TierService) Tiers(ctx context.Context) ([]model.WeightTier, error) {
	return cache.Remember(ctx, s.cache, cache.CategoryTiers, cache.Key(cache.CategoryTiers, "all"), nil,
		func(ctx context.Context) ([]model.WeightTier, error) {
			tiers, err := s.repo.ListOrdered(ctx)
			if err != nil {
				return nil, errorx.Transient("查询重量档位失败", err)
			}
			if len(tiers) == 0 {
				return nil, errorx.Configuration("重量档位表为空")
			}
			sort.SliceStable(tiers, func(i, j int) bool {
				return tiers[i].MinWeightGrams < tiers[j].MinWeightGrams
			})
			return tiers, nil
		})
}

// Resolve 为计费重选择档位
func (s *TierService) Resolve(ctx context.Context, chargeableGrams int64) (*model.WeightTier, error) {
	tiers, err := s.Tiers(ctx)
	if err != nil {
		return nil, err
	}
	tier := PickTier(tiers, chargeableGrams)
	return &tier, nil
}

// Warm 预热档位表
func (s *TierService) Warm(ctx context.Context) error {
	_, err := s.Tiers(ctx)
	return err
}

// PickTier 在按下限升序的非空档位表中选择：
// 低于首档取首档；落在区间内取该档；落在空隙取其上方的档；超过末档取末档
func PickTier(tiers []model.WeightTier, grams int64) model.WeightTier {
	if grams < tiers[0].MinWeightGrams {
		return tiers[0]
	}
	i := sort.Search(len(tiers), func(i int) bool {
		return tiers[i].MaxWeightGrams >= grams
	})
	if i == len(tiers) {
		return tiers[len(tiers)-1]
	}
	return tiers[i]
}
