package dto

import "github.com/shopspring/decimal"

// ==================== 请求 DTO ====================

// QuoteLineReq 购物车行
type QuoteLineReq struct {
	ProductID       int64            `json:"product_id"`
	ProducerID      int64            `json:"producer_id"`
	Quantity        int              `json:"quantity" binding:"gt=0"`
	UnitWeightGrams int64            `json:"unit_weight_grams" binding:"gte=0"` // 克
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPrice   *decimal.Decimal `json:"discount_price,omitempty"` // 行级折扣价
	LengthCm        float64          `json:"length_cm" binding:"gte=0"`
	WidthCm         float64          `json:"width_cm" binding:"gte=0"`
	HeightCm        float64          `json:"height_cm" binding:"gte=0"`
	IsPerishable    bool             `json:"is_perishable"`
	IsFragile       bool             `json:"is_fragile"`
}

// QuoteReq 报价请求
type QuoteReq struct {
	Lines        []QuoteLineReq `json:"lines" binding:"required,min=1,dive"`
	PostalCode   string         `json:"postal_code"`
	CODRequested bool           `json:"cod_requested"`
}

// ==================== 响应 DTO ====================

// ShippingOptionResp 配送选项；金额均为两位小数字符串
type ShippingOptionResp struct {
	MethodID           int64   `json:"method_id"`
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Cost               string  `json:"cost"`
	BaseCost           string  `json:"base_cost"`
	Surcharge          string  `json:"surcharge"`
	IsFree             bool    `json:"is_free"`
	OriginalCost       *string `json:"original_cost,omitempty"`
	DiscountPercentage *string `json:"discount_percentage,omitempty"`
	SupportsCOD        bool    `json:"supports_cod"`
}

// ProducerQuoteResp 单个生产者的报价
type ProducerQuoteResp struct {
	ProducerID            int64                `json:"producer_id"`
	ZoneID                int64                `json:"zone_id"`
	WeightTierID          int64                `json:"weight_tier_id"`
	RealWeightGrams       int64                `json:"real_weight_grams"`
	VolumetricWeightGrams int64                `json:"volumetric_weight_grams"`
	ChargeableWeightGrams int64                `json:"chargeable_weight_grams"`
	ShipmentValue         string               `json:"shipment_value"`
	Options               []ShippingOptionResp `json:"options"`
}

// QuoteResp 报价响应；producers 为空表示该目的地无可配送选项
type QuoteResp struct {
	QuoteID           string              `json:"quote_id"`
	ZoneID            int64               `json:"zone_id"`
	Currency          string              `json:"currency"`
	Producers         []ProducerQuoteResp `json:"producers"`
	ExcludedProducers []int64             `json:"excluded_producers"`
	CODRequested      bool                `json:"cod_requested"`
	CODApplied        bool                `json:"cod_applied"`
	CODCost           string              `json:"cod_cost"`
}

// ZoneResolveResp 邮编解析结果
type ZoneResolveResp struct {
	PostalCode string `json:"postal_code"`
	Normalized string `json:"normalized"`
	ZoneID     int64  `json:"zone_id"`
}

// ErrorResp 错误响应
type ErrorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
