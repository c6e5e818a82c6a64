package service

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// DefaultCODCost 未配置时的货到付款手续费
var DefaultCODCost = decimal.RequireFromString("2.00")

type codSetting struct {
	Found bool            `json:"found"`
	Cost  decimal.Decimal `json:"cost"`
}

// CODService 货到付款手续费（每单一次）
type CODService struct {
	repo        repository.CODSettingRepository
	cache       *cache.Cache
	log         logger.Logger
	defaultCost decimal.Decimal
}

func NewCODService(repo repository.CODSettingRepository, c *cache.Cache, log logger.Logger, defaultCost decimal.Decimal) *CODService {
	return &CODService{repo: repo, cache: c, log: log, defaultCost: defaultCost}
}

// Cost 当前手续费；无生效配置或查询失败时用默认值
func (s *CODService) Cost(ctx context.Context) decimal.Decimal {
	setting, err := cache.Remember(ctx, s.cache, cache.CategoryCOD, cache.Key(cache.CategoryCOD, "active"), nil,
		func(ctx context.Context) (codSetting, error) {
			row, err := s.repo.GetActive(ctx)
			ok, err := found(err)
			if err != nil {
				return codSetting{}, errorx.Transient("查询货到付款配置失败", err)
			}
			if !ok {
				return codSetting{Found: false}, nil
			}
			return codSetting{Found: true, Cost: row.Cost}, nil
		})
	if err != nil {
		s.log.Warnf(ctx, "[COD] 查询手续费失败，使用默认值 %s: %v", s.defaultCost, err)
		return s.defaultCost
	}
	if !setting.Found {
		return s.defaultCost
	}
	return setting.Cost
}

// Resolve 请求了货到付款且至少一个最终选项支持时才收取
func (s *CODService) Resolve(ctx context.Context, requested bool, producers []ProducerQuote) (bool, decimal.Decimal) {
	if !requested {
		return false, decimal.Zero
	}
	for _, pq := range producers {
		for _, opt := range pq.Options {
			if opt.SupportsCOD {
				return true, s.Cost(ctx)
			}
		}
	}
	s.log.Infof(ctx, "[COD] 请求了货到付款，但没有支持货到付款的配送方式")
	return false, decimal.Zero
}
