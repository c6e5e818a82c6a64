package model

import (
	"github.com/shopspring/decimal"
)

// ShippingZone 配送区域
type ShippingZone struct {
	BaseModel

	Code string `gorm:"size:50;uniqueIndex;not null;comment:区域编码" json:"code"`
	Name string `gorm:"size:100;not null;comment:区域名称" json:"name"`
}

// PostalCodePrefix 邮编前缀 -> 区域映射（最长前缀匹配）
type PostalCodePrefix struct {
	BaseModel

	Prefix string `gorm:"size:20;uniqueIndex;not null;comment:邮编前缀(纯数字)" json:"prefix"`
	ZoneID int64  `gorm:"index;not null;comment:区域ID" json:"zone_id"`
}

// WeightTier 重量档位（闭区间，单位：克）
type WeightTier struct {
	BaseModel

	MinWeightGrams int64 `gorm:"not null;index;comment:最小重量(克)" json:"min_weight_grams"`
	MaxWeightGrams int64 `gorm:"not null;comment:最大重量(克)" json:"max_weight_grams"`
}

// Contains 重量是否落在档位内
func (t WeightTier) Contains(grams int64) bool {
	return grams >= t.MinWeightGrams && grams <= t.MaxWeightGrams
}

// DeliveryMethod 配送方式；限制字段为空表示不限制
type DeliveryMethod struct {
	BaseModel

	Code           string   `gorm:"size:50;uniqueIndex;not null;comment:编码" json:"code"`
	Name           string   `gorm:"size:100;not null;comment:名称" json:"name"`
	MaxWeightGrams *int64   `gorm:"comment:最大重量(克)" json:"max_weight_grams,omitempty"`
	MaxLengthCm    *float64 `gorm:"comment:最大长度(cm)" json:"max_length_cm,omitempty"`
	MaxWidthCm     *float64 `gorm:"comment:最大宽度(cm)" json:"max_width_cm,omitempty"`
	MaxHeightCm    *float64 `gorm:"comment:最大高度(cm)" json:"max_height_cm,omitempty"`

	SuitableForPerishable bool `gorm:"default:false;comment:可配送生鲜" json:"suitable_for_perishable"`
	SuitableForFragile    bool `gorm:"default:false;comment:可配送易碎品" json:"suitable_for_fragile"`
	SupportsCOD           bool `gorm:"default:false;comment:支持货到付款" json:"supports_cod"`
	IsActive              bool `gorm:"default:false;index;comment:是否启用" json:"is_active"`
}

// ProducerSupportedMethod 生产者启用的配送方式
type ProducerSupportedMethod struct {
	BaseModel

	ProducerID       int64 `gorm:"uniqueIndex:idx_producer_method;not null;comment:生产者ID" json:"producer_id"`
	DeliveryMethodID int64 `gorm:"uniqueIndex:idx_producer_method;not null;comment:配送方式ID" json:"delivery_method_id"`
	IsEnabled        bool  `gorm:"default:false;comment:是否启用" json:"is_enabled"`
}

// ShippingRate 基础运费；ProducerID 为空是默认价，非空是生产者覆盖价
type ShippingRate struct {
	BaseModel

	ZoneID           int64           `gorm:"uniqueIndex:idx_rate_tuple;not null" json:"zone_id"`
	WeightTierID     int64           `gorm:"uniqueIndex:idx_rate_tuple;not null" json:"weight_tier_id"`
	DeliveryMethodID int64           `gorm:"uniqueIndex:idx_rate_tuple;not null" json:"delivery_method_id"`
	ProducerID       *int64          `gorm:"uniqueIndex:idx_rate_tuple;comment:为空表示默认价" json:"producer_id,omitempty"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// ExtraWeightCharge 超重续重单价；DeliveryMethodID 为空表示该区域所有配送方式
type ExtraWeightCharge struct {
	BaseModel

	ZoneID           int64           `gorm:"index;not null" json:"zone_id"`
	DeliveryMethodID *int64          `gorm:"index" json:"delivery_method_id,omitempty"`
	PricePerKg       decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:每公斤价格" json:"price_per_kg"`
	IsActive         bool            `gorm:"default:false" json:"is_active"`
}

// ProducerFreeShippingRule 生产者包邮门槛
// 匹配优先级：区域+配送方式 > 仅区域 > 全局
type ProducerFreeShippingRule struct {
	BaseModel

	ProducerID       int64           `gorm:"index;not null" json:"producer_id"`
	ZoneID           *int64          `json:"zone_id,omitempty"`
	DeliveryMethodID *int64          `json:"delivery_method_id,omitempty"`
	Threshold        decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:包邮门槛金额" json:"threshold"`
	IsActive         bool            `gorm:"default:false" json:"is_active"`
}

// MultiProducerDiscountRule 多生产者订单运费折扣；ProducerID 为空是默认规则
type MultiProducerDiscountRule struct {
	BaseModel

	ProducerID           *int64          `gorm:"index" json:"producer_id,omitempty"`
	ZoneID               int64           `gorm:"index:idx_discount_key;not null" json:"zone_id"`
	WeightTierID         int64           `gorm:"index:idx_discount_key;not null" json:"weight_tier_id"`
	DeliveryMethodID     int64           `gorm:"index:idx_discount_key;not null" json:"delivery_method_id"`
	DiscountPercentage   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`
	MinProducersRequired int             `gorm:"default:2" json:"min_producers_required"`
}

// CODSetting 货到付款手续费
type CODSetting struct {
	BaseModel

	Cost     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	IsActive bool            `gorm:"default:false" json:"is_active"`
}

func (ShippingZone) TableName() string              { return "shipping_zones" }
func (PostalCodePrefix) TableName() string          { return "postal_code_prefixes" }
func (WeightTier) TableName() string                { return "weight_tiers" }
func (DeliveryMethod) TableName() string            { return "delivery_methods" }
func (ProducerSupportedMethod) TableName() string   { return "producer_supported_methods" }
func (ShippingRate) TableName() string              { return "shipping_rates" }
func (ExtraWeightCharge) TableName() string         { return "extra_weight_charges" }
func (ProducerFreeShippingRule) TableName() string  { return "producer_free_shipping_rules" }
func (MultiProducerDiscountRule) TableName() string { return "multi_producer_discount_rules" }
func (CODSetting) TableName() string                { return "cod_settings" }

// ShippingModels 需要自动迁移的全部配置表
func ShippingModels() []interface{} {
	return []interface{}{
		&ShippingZone{}, &PostalCodePrefix{}, &WeightTier{},
		&DeliveryMethod{}, &ProducerSupportedMethod{},
		&ShippingRate{}, &ExtraWeightCharge{},
		&ProducerFreeShippingRule{}, &MultiProducerDiscountRule{},
		&CODSetting{},
	}
}
