package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/pkg/logger"
)

func TestFreeShippingService_Specificity(t *testing.T) {
	f := newEngineFixture(t)
	c := f.standard()
	const producer = 5
	f.create(&model.ProducerFreeShippingRule{ProducerID: producer, Threshold: money("100.00"), IsActive: true})
	f.create(&model.ProducerFreeShippingRule{ProducerID: producer, DeliveryMethodID: ptr(c.pickup), Threshold: money("80.00"), IsActive: true})
	f.create(&model.ProducerFreeShippingRule{ProducerID: producer, ZoneID: ptr(c.athens), Threshold: money("60.00"), IsActive: true})
	f.create(&model.ProducerFreeShippingRule{ProducerID: producer, ZoneID: ptr(c.athens), DeliveryMethodID: ptr(c.courier), Threshold: money("40.00"), IsActive: true})
	svc := NewFreeShippingService(f.repos.FreeShipping, f.cache, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		name      string
		zone      int64
		method    int64
		scope     string
		threshold string
	}{
		{"区域+配送方式", c.athens, c.courier, FreeScopeZoneMethod, "40.00"},
		{"仅区域", c.athens, c.pickup, FreeScopeZone, "60.00"},
		{"仅配送方式的规则不匹配", c.islands, c.pickup, FreeScopeGlobal, "100.00"},
		{"全局", c.islands, c.courier, FreeScopeGlobal, "100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := svc.Evaluate(ctx, producer, tt.zone, tt.method, money("1.00"))
			assert.Equal(t, tt.scope, d.Scope)
			assert.True(t, money(tt.threshold).Equal(d.Threshold))
			assert.False(t, d.Qualifies)
		})
	}
}

func TestFreeShippingService_ThresholdInclusive(t *testing.T) {
	f := newEngineFixture(t)
	c := f.standard()
	f.create(&model.ProducerFreeShippingRule{ProducerID: 1, ZoneID: ptr(c.athens), Threshold: money("50.00"), IsActive: true})
	svc := NewFreeShippingService(f.repos.FreeShipping, f.cache, logger.NewNop())
	ctx := context.Background()

	assert.True(t, svc.Evaluate(ctx, 1, c.athens, c.courier, money("50.00")).Qualifies)
	assert.True(t, svc.Evaluate(ctx, 1, c.athens, c.courier, money("50.01")).Qualifies)
	assert.False(t, svc.Evaluate(ctx, 1, c.athens, c.courier, money("49.99")).Qualifies)
}

func TestFreeShippingService_InactiveOrMissingRule(t *testing.T) {
	f := newEngineFixture(t)
	c := f.standard()
	f.create(&model.ProducerFreeShippingRule{ProducerID: 1, Threshold: money("10.00"), IsActive: false})
	svc := NewFreeShippingService(f.repos.FreeShipping, f.cache, logger.NewNop())
	ctx := context.Background()

	assert.False(t, svc.Evaluate(ctx, 1, c.athens, c.courier, money("500.00")).Qualifies, "停用规则")
	assert.False(t, svc.Evaluate(ctx, 2, c.athens, c.courier, money("500.00")).Qualifies, "无规则")
}

type brokenFreeShippingRepo struct{}

func (brokenFreeShippingRepo) FindActive(context.Context, int64, *int64, *int64) (*model.ProducerFreeShippingRule, error) {
	return nil, errStoreDown
}

func TestFreeShippingService_StoreFailureMeansNotFree(t *testing.T) {
	svc := NewFreeShippingService(brokenFreeShippingRepo{}, newTestCache(), logger.NewNop())

	assert.False(t, svc.Evaluate(context.Background(), 1, 1, 1, money("1000")).Qualifies)
}
