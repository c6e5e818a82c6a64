package cache

import (
	"strconv"
	"strings"
	"time"
)

// Category 缓存数据类别，同时作为失效标签
type Category string

const (
	CategoryZones        Category = "zones"
	CategoryTiers        Category = "tiers"
	CategoryMethods      Category = "methods"
	CategoryRates        Category = "rates"
	CategoryExtraWeight  Category = "extra_weight"
	CategoryFreeShipping Category = "free_shipping"
	CategoryDiscounts    Category = "discounts"
	CategoryCOD          Category = "cod"
)

// AllCategories 全部类别
func AllCategories() []Category {
	return []Category{
		CategoryZones, CategoryTiers, CategoryMethods, CategoryRates,
		CategoryExtraWeight, CategoryFreeShipping, CategoryDiscounts, CategoryCOD,
	}
}

const keyPrefix = "shipping"

// Key 生成带命名空间的缓存键，如 shipping:rates:z3:t2:m1:p_
// 参数支持 string / int / int64 / *int64（nil 记为 "_"）
func Key(cat Category, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteByte(':')
	b.WriteString(string(cat))
	for _, p := range parts {
		b.WriteByte(':')
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case *int64:
			if v == nil {
				b.WriteByte('_')
			} else {
				b.WriteString(strconv.FormatInt(*v, 10))
			}
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// CategoryTag 类别标签
func CategoryTag(cat Category) string {
	return keyPrefix + ":tag:" + string(cat)
}

// ProducerTag 生产者标签，生产者配置变更时一次性失效其全部派生缓存
func ProducerTag(producerID int64) string {
	return keyPrefix + ":tag:producer:" + strconv.FormatInt(producerID, 10)
}

// TTLs 各类别的过期时间
type TTLs map[Category]time.Duration

const fallbackTTL = time.Hour

// DefaultTTLs 默认 TTL：区域/档位/COD 以天计，费率与规则以小时计
func DefaultTTLs() TTLs {
	return TTLs{
		CategoryZones:        7 * 24 * time.Hour,
		CategoryTiers:        7 * 24 * time.Hour,
		CategoryMethods:      24 * time.Hour,
		CategoryRates:        6 * time.Hour,
		CategoryExtraWeight:  6 * time.Hour,
		CategoryFreeShipping: 6 * time.Hour,
		CategoryDiscounts:    6 * time.Hour,
		CategoryCOD:          7 * 24 * time.Hour,
	}
}

// For 获取某类别的 TTL，未配置时使用兜底值
func (t TTLs) For(cat Category) time.Duration {
	if d, ok := t[cat]; ok && d > 0 {
		return d
	}
	return fallbackTTL
}

// Max 最长 TTL，用于 Redis 标签集合的过期时间
func (t TTLs) Max() time.Duration {
	max := fallbackTTL
	for _, d := range t {
		if d > max {
			max = d
		}
	}
	return max
}
