package service

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"marketplace_shipping_v1/internal/repository"
	"marketplace_shipping_v1/pkg/cache"
	"marketplace_shipping_v1/pkg/errorx"
	"marketplace_shipping_v1/pkg/logger"
)

// zonePrefix 缓存的前缀映射
type zonePrefix struct {
	Prefix string `json:"prefix"`
	ZoneID int64  `json:"zone_id"`
}

// ZoneService 邮编 → 配送区域
type ZoneService struct {
	repo          repository.ZoneRepository
	cache         *cache.Cache
	log           logger.Logger
	defaultZoneID int64
}

func NewZoneService(repo repository.ZoneRepository, c *cache.Cache, log logger.Logger, defaultZoneID int64) *ZoneService {
	return &ZoneService{
		repo:          repo,
		cache:         c,
		log:           log,
		defaultZoneID: defaultZoneID,
	}
}

// NormalizePostalCode 去除非数字字符
func NormalizePostalCode(postalCode string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, postalCode)
}

// Resolve 最长前缀匹配；空邮编、无匹配或查询失败都回落到默认区域
func (s *ZoneService) Resolve(ctx context.Context, postalCode string) (int64, error) {
	if s.defaultZoneID <= 0 {
		return 0, errorx.Configuration("未配置默认配送区域")
	}

	digits := NormalizePostalCode(postalCode)
	if digits == "" {
		s.log.Warnf(ctx, "[Zone] 邮编为空或无数字 %q，使用默认区域 %d", postalCode, s.defaultZoneID)
		return s.defaultZoneID, nil
	}

	prefixes, err := s.prefixes(ctx)
	if err != nil {
		s.log.Warnf(ctx, "[Zone] 加载邮编前缀失败，使用默认区域 %d: %v", s.defaultZoneID, err)
		return s.defaultZoneID, nil
	}

	for _, p := range prefixes {
		if strings.HasPrefix(digits, p.Prefix) {
			return p.ZoneID, nil
		}
	}

	s.log.Debugf(ctx, "[Zone] 邮编 %s 无匹配前缀，使用默认区域 %d", digits, s.defaultZoneID)
	return s.defaultZoneID, nil
}

// Warm 预热前缀表
func (s *ZoneService) Warm(ctx context.Context) error {
	_, err := s.prefixes(ctx)
	return err
}

func (s *ZoneService) prefixes(ctx context.Context) ([]zonePrefix, error) {
	return cache.Remember(ctx, s.cache, cache.CategoryZones, cache.Key(cache.CategoryZones, "prefixes"), nil,
		func(ctx context.Context) ([]zonePrefix, error) {
			rows, err := s.repo.ListPrefixes(ctx)
			if err != nil {
				return nil, errorx.Transient("查询邮编前缀失败", err)
			}

			list := make([]zonePrefix, 0, len(rows))
			for _, row := range rows {
				prefix := NormalizePostalCode(row.Prefix)
				if prefix == "" {
					continue
				}
				list = append(list, zonePrefix{Prefix: prefix, ZoneID: row.ZoneID})
			}
			// 长前缀优先，同长度按字典序保证确定性
			sort.SliceStable(list, func(i, j int) bool {
				if len(list[i].Prefix) != len(list[j].Prefix) {
					return len(list[i].Prefix) > len(list[j].Prefix)
				}
				return list[i].Prefix < list[j].Prefix
			})
			return list, nil
		})
}
