package service

import (
	"math"

	"github.com/shopspring/decimal"
)

var maxGrams = decimal.NewFromInt(math.MaxInt64)

// DefaultVolumetricDivisor 体积重除数（cm³/kg）
const DefaultVolumetricDivisor = 5000

// ShipmentWeights 包裹重量（克）
type ShipmentWeights struct {
	Real       int64
	Volumetric int64
	Chargeable int64
}

// VolumetricWeightGrams 体积重：先按公斤保留两位小数，再换算成克；
// 任一尺寸缺失或非正数时为 0；超出 int64 时取 math.MaxInt64
func VolumetricWeightGrams(lengthCm, widthCm, heightCm, divisor float64) int64 {
	if lengthCm <= 0 || widthCm <= 0 || heightCm <= 0 || divisor <= 0 {
		return 0
	}
	kg := decimal.NewFromFloat(lengthCm).
		Mul(decimal.NewFromFloat(widthCm)).
		Mul(decimal.NewFromFloat(heightCm)).
		Div(decimal.NewFromFloat(divisor)).
		Round(2)
	grams := kg.Mul(decimal.NewFromInt(1000)).Round(0)
	if grams.GreaterThan(maxGrams) {
		return math.MaxInt64
	}
	return grams.IntPart()
}

// ChargeableWeightGrams 计费重 = max(实重, 体积重)
func ChargeableWeightGrams(realGrams int64, lengthCm, widthCm, heightCm, divisor float64) int64 {
	volumetric := VolumetricWeightGrams(lengthCm, widthCm, heightCm, divisor)
	if volumetric > realGrams {
		return volumetric
	}
	return realGrams
}

// AggregateShipment 汇总一个生产者的所有行：
// 实重与货值累加；长宽高各取单品最大值（外包装包住所有商品而非堆叠）
func AggregateShipment(producerID int64, lines []ShipmentLine) Shipment {
	s := Shipment{ProducerID: producerID, Value: decimal.Zero}
	for _, line := range lines {
		qty := int64(line.Quantity)
		s.RealWeightGrams += line.UnitWeightGrams * qty
		s.Value = s.Value.Add(line.EffectiveUnitPrice().Mul(decimal.NewFromInt(qty)))

		if line.LengthCm > s.LengthCm {
			s.LengthCm = line.LengthCm
		}
		if line.WidthCm > s.WidthCm {
			s.WidthCm = line.WidthCm
		}
		if line.HeightCm > s.HeightCm {
			s.HeightCm = line.HeightCm
		}
		s.HasPerishable = s.HasPerishable || line.IsPerishable
		s.HasFragile = s.HasFragile || line.IsFragile
	}
	return s
}

// Weigh 计算包裹的三种重量
func Weigh(s Shipment, divisor float64) ShipmentWeights {
	volumetric := VolumetricWeightGrams(s.LengthCm, s.WidthCm, s.HeightCm, divisor)
	chargeable := s.RealWeightGrams
	if volumetric > chargeable {
		chargeable = volumetric
	}
	return ShipmentWeights{
		Real:       s.RealWeightGrams,
		Volumetric: volumetric,
		Chargeable: chargeable,
	}
}
