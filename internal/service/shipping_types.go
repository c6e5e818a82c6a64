package service

import (
	"github.com/shopspring/decimal"
)

// ShipmentLine 购物车行（调用方每次报价时传入，不落库）
type ShipmentLine struct {
	ProductID       int64
	ProducerID      int64
	Quantity        int
	UnitWeightGrams int64
	UnitPrice       decimal.Decimal
	DiscountPrice   *decimal.Decimal // 行级折扣价，存在时优先
	LengthCm        float64
	WidthCm         float64
	HeightCm        float64
	IsPerishable    bool
	IsFragile       bool
}

// EffectiveUnitPrice 计算货值使用的单价
func (l ShipmentLine) EffectiveUnitPrice() decimal.Decimal {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.UnitPrice
}

// Shipment 单个生产者的汇总包裹
type Shipment struct {
	ProducerID      int64
	RealWeightGrams int64
	LengthCm        float64
	WidthCm         float64
	HeightCm        float64
	Value           decimal.Decimal
	HasPerishable   bool
	HasFragile      bool
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	Lines        []ShipmentLine
	PostalCode   string
	CODRequested bool
}

// ShippingOption 某生产者的一个可用配送方式及其价格
type ShippingOption struct {
	MethodID           int64
	Code               string
	Name               string
	Cost               decimal.Decimal // 最终价格
	BaseCost           decimal.Decimal // 基础运费
	Surcharge          decimal.Decimal // 超重附加费
	IsFree             bool
	OriginalCost       *decimal.Decimal // 多生产者折扣前价格
	DiscountPercentage *decimal.Decimal
	SupportsCOD        bool
}

// ProducerQuote 单个生产者的报价结果
type ProducerQuote struct {
	ProducerID            int64
	ZoneID                int64
	WeightTierID          int64
	RealWeightGrams       int64
	VolumetricWeightGrams int64
	ChargeableWeightGrams int64
	ShipmentValue         decimal.Decimal
	Options               []ShippingOption
}

// Quote 整单报价
type Quote struct {
	QuoteID           string
	ZoneID            int64
	Currency          string
	Producers         []ProducerQuote
	ExcludedProducers []int64 // 无可用配送方式而被排除的生产者
	CODRequested      bool
	CODApplied        bool
	CODCost           decimal.Decimal
}

// Available 是否存在任何可配送的生产者
func (q *Quote) Available() bool {
	return len(q.Producers) > 0
}
