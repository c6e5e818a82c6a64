package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/pkg/logger"
)

func TestExcessKg(t *testing.T) {
	tests := []struct {
		grams int64
		want  int64
	}{
		{0, 0},
		{10000, 0},
		{10001, 1},
		{11000, 1},
		{11001, 2},
		{50000, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExcessKg(tt.grams, 10000), "grams=%d", tt.grams)
	}
}

func TestSurchargeService_RateLookupOrder(t *testing.T) {
	f := newEngineFixture(t)
	c := f.standard()
	f.create(&model.ExtraWeightCharge{ZoneID: c.athens, DeliveryMethodID: ptr(c.courier), PricePerKg: money("1.50"), IsActive: true})
	f.create(&model.ExtraWeightCharge{ZoneID: c.athens, PricePerKg: money("1.20"), IsActive: true})
	f.create(&model.ExtraWeightCharge{ZoneID: c.islands, PricePerKg: money("9.99"), IsActive: false})
	svc := NewSurchargeService(f.repos.ExtraWeight, f.cache, logger.NewNop(), 10000, money("0.90"))
	ctx := context.Background()

	assert.True(t, money("1.50").Equal(svc.RatePerKg(ctx, c.athens, c.courier)), "区域+配送方式")
	assert.True(t, money("1.20").Equal(svc.RatePerKg(ctx, c.athens, c.pickup)), "区域通用")
	assert.True(t, money("0.90").Equal(svc.RatePerKg(ctx, c.islands, c.pickup)), "停用的行不生效")
}

func TestSurchargeService_Resolve(t *testing.T) {
	f := newEngineFixture(t)
	c := f.standard()
	svc := NewSurchargeService(f.repos.ExtraWeight, f.cache, logger.NewNop(), 10000, money("0.90"))
	ctx := context.Background()

	assert.True(t, svc.Resolve(ctx, c.athens, c.courier, 10000).IsZero(), "阈值本身不收费")
	assert.True(t, money("0.90").Equal(svc.Resolve(ctx, c.athens, c.courier, 10001)), "不足一公斤按一公斤")
	assert.True(t, money("36.00").Equal(svc.Resolve(ctx, c.athens, c.courier, 50000)))
}

type brokenExtraWeightRepo struct{}

func (brokenExtraWeightRepo) FindActive(context.Context, int64, *int64) (*model.ExtraWeightCharge, error) {
	return nil, errStoreDown
}

func TestSurchargeService_StoreFailureUsesDefaultRate(t *testing.T) {
	svc := NewSurchargeService(brokenExtraWeightRepo{}, newTestCache(), logger.NewNop(), 10000, money("0.90"))

	got := svc.Resolve(context.Background(), 1, 1, 12500)
	assert.True(t, money("2.70").Equal(got), got.String())
}
