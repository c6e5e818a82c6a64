package dto

import "github.com/shopspring/decimal"

// UpsertRateReq 新增或更新运费；producer_id 为空时维护默认价
type UpsertRateReq struct {
	ZoneID           int64           `json:"zone_id" binding:"required,gt=0"`
	WeightTierID     int64           `json:"weight_tier_id" binding:"required,gt=0"`
	DeliveryMethodID int64           `json:"delivery_method_id" binding:"required,gt=0"`
	ProducerID       *int64          `json:"producer_id,omitempty"`
	Price            decimal.Decimal `json:"price"`
}

// RateResp 运费行
type RateResp struct {
	ID               int64  `json:"id"`
	ZoneID           int64  `json:"zone_id"`
	WeightTierID     int64  `json:"weight_tier_id"`
	DeliveryMethodID int64  `json:"delivery_method_id"`
	ProducerID       *int64 `json:"producer_id,omitempty"`
	Price            string `json:"price"`
}

// FlushCacheReq 缓存失效请求；categories 为空时失效全部类别
type FlushCacheReq struct {
	Categories []string `json:"categories"`
	ProducerID *int64   `json:"producer_id,omitempty"`
}

// FlushCacheResp 缓存失效结果
type FlushCacheResp struct {
	Categories []string `json:"categories"`
	ProducerID *int64   `json:"producer_id,omitempty"`
}
