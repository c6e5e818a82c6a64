package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumetricWeightGrams(t *testing.T) {
	tests := []struct {
		name    string
		l, w, h float64
		divisor float64
		want    int64
	}{
		{"标准纸箱", 40, 30, 20, 5000, 4800},
		{"小盒子", 10, 10, 10, 5000, 200},
		{"两位小数四舍五入", 11, 13, 17, 5000, 490}, // 2431/5000 = 0.4862 -> 0.49kg
		{"缺少尺寸", 40, 0, 20, 5000, 0},
		{"负尺寸", 40, -30, 20, 5000, 0},
		{"除数为零", 40, 30, 20, 0, 0},
		{"其他除数", 40, 30, 20, 6000, 4000},
		{"超出 int64 取上限", 1e7, 1e7, 1e7, 0.001, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VolumetricWeightGrams(tt.l, tt.w, tt.h, tt.divisor))
		})
	}
}

func TestChargeableWeight_Monotonic(t *testing.T) {
	for realGrams := int64(0); realGrams <= 6000; realGrams += 750 {
		prev := int64(-1)
		for l := 1.0; l <= 80; l += 3.5 {
			vol := VolumetricWeightGrams(l, 30, 20, DefaultVolumetricDivisor)
			charge := ChargeableWeightGrams(realGrams, l, 30, 20, DefaultVolumetricDivisor)

			assert.GreaterOrEqual(t, charge, realGrams)
			assert.GreaterOrEqual(t, charge, vol)
			assert.GreaterOrEqual(t, vol, prev, "加大尺寸不应降低体积重 l=%v", l)
			prev = vol
		}
	}
}

func TestAggregateShipment(t *testing.T) {
	discounted := money("8.00")
	lines := []ShipmentLine{
		{ProducerID: 7, Quantity: 2, UnitWeightGrams: 400, UnitPrice: money("10.00"), LengthCm: 20, WidthCm: 10, HeightCm: 5},
		{ProducerID: 7, Quantity: 3, UnitWeightGrams: 100, UnitPrice: money("12.00"), DiscountPrice: &discounted, LengthCm: 15, WidthCm: 25, HeightCm: 4, IsFragile: true},
	}

	s := AggregateShipment(7, lines)

	assert.Equal(t, int64(7), s.ProducerID)
	assert.Equal(t, int64(1100), s.RealWeightGrams)
	assert.True(t, money("44.00").Equal(s.Value), s.Value.String())
	assert.Equal(t, 20.0, s.LengthCm)
	assert.Equal(t, 25.0, s.WidthCm)
	assert.Equal(t, 5.0, s.HeightCm)
	assert.True(t, s.HasFragile)
	assert.False(t, s.HasPerishable)
}

func TestWeigh(t *testing.T) {
	w := Weigh(Shipment{RealWeightGrams: 3000, LengthCm: 40, WidthCm: 30, HeightCm: 20}, DefaultVolumetricDivisor)
	assert.Equal(t, ShipmentWeights{Real: 3000, Volumetric: 4800, Chargeable: 4800}, w)

	w = Weigh(Shipment{RealWeightGrams: 9000, LengthCm: 40, WidthCm: 30, HeightCm: 20}, DefaultVolumetricDivisor)
	assert.Equal(t, int64(9000), w.Chargeable)
}
