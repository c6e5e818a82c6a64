package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_shipping_v1/internal/model"
)

// ==================== 测试辅助 ====================

func setupShippingRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	// :memory: 每个连接是独立的库
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.ShippingModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func ptr(v int64) *int64 { return &v }

// ==================== 单元测试 ====================

func TestZoneRepo_ListPrefixes_LongestFirst(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewZoneRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.ShippingZone{Code: "A", Name: "Zone A"}).Error)
	db.Create(&model.PostalCodePrefix{Prefix: "1", ZoneID: 1})
	db.Create(&model.PostalCodePrefix{Prefix: "115", ZoneID: 2})
	db.Create(&model.PostalCodePrefix{Prefix: "84", ZoneID: 3})

	list, err := repo.ListPrefixes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "115", list[0].Prefix)
	assert.Equal(t, "84", list[1].Prefix)
	assert.Equal(t, "1", list[2].Prefix)

	zone, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", zone.Code)

	_, err = repo.GetByID(ctx, 99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestWeightTierRepo_ListOrdered(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewWeightTierRepository(db)

	db.Create(&model.WeightTier{MinWeightGrams: 5001, MaxWeightGrams: 10000})
	db.Create(&model.WeightTier{MinWeightGrams: 0, MaxWeightGrams: 1000})
	db.Create(&model.WeightTier{MinWeightGrams: 1001, MaxWeightGrams: 5000})

	tiers, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, int64(0), tiers[0].MinWeightGrams)
	assert.Equal(t, int64(5001), tiers[2].MinWeightGrams)
}

func TestDeliveryMethodRepo(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewDeliveryMethodRepository(db)
	ctx := context.Background()

	db.Create(&model.DeliveryMethod{Code: "courier", Name: "Courier", IsActive: true})
	db.Create(&model.DeliveryMethod{Code: "pickup", Name: "Pickup", IsActive: false})
	db.Create(&model.ProducerSupportedMethod{ProducerID: 7, DeliveryMethodID: 1, IsEnabled: true})
	db.Create(&model.ProducerSupportedMethod{ProducerID: 7, DeliveryMethodID: 2, IsEnabled: false})

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "courier", active[0].Code)

	ids, err := repo.ListEnabledIDsForProducer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = repo.ListEnabledIDsForProducer(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestShippingRateRepo_FindRate(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewShippingRateRepository(db)
	ctx := context.Background()

	db.Create(&model.ShippingRate{ZoneID: 1, WeightTierID: 2, DeliveryMethodID: 3, Price: decimal.RequireFromString("5.00")})
	db.Create(&model.ShippingRate{ZoneID: 1, WeightTierID: 2, DeliveryMethodID: 3, ProducerID: ptr(9), Price: decimal.RequireFromString("3.20")})

	def, err := repo.FindRate(ctx, 1, 2, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "5.00", def.Price.StringFixed(2))

	override, err := repo.FindRate(ctx, 1, 2, 3, ptr(9))
	require.NoError(t, err)
	assert.Equal(t, "3.20", override.Price.StringFixed(2))

	_, err = repo.FindRate(ctx, 1, 2, 3, ptr(10))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestShippingRateRepo_Upsert(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewShippingRateRepository(db)
	ctx := context.Background()

	rate := &model.ShippingRate{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, ProducerID: ptr(4), Price: decimal.RequireFromString("6.00")}
	require.NoError(t, repo.Upsert(ctx, rate))
	firstID := rate.ID

	again := &model.ShippingRate{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, ProducerID: ptr(4), Price: decimal.RequireFromString("7.50")}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)

	found, err := repo.FindRate(ctx, 1, 1, 1, ptr(4))
	require.NoError(t, err)
	assert.Equal(t, "7.50", found.Price.StringFixed(2))

	var count int64
	db.Model(&model.ShippingRate{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestShippingRateRepo_Upsert_RestoresSoftDeleted(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewShippingRateRepository(db)
	ctx := context.Background()

	rate := &model.ShippingRate{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, ProducerID: ptr(4), Price: decimal.RequireFromString("6.00")}
	require.NoError(t, repo.Upsert(ctx, rate))
	require.NoError(t, db.Delete(&model.ShippingRate{}, rate.ID).Error)

	_, err := repo.FindRate(ctx, 1, 1, 1, ptr(4))
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	again := &model.ShippingRate{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, ProducerID: ptr(4), Price: decimal.RequireFromString("8.25")}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, rate.ID, again.ID)

	found, err := repo.FindRate(ctx, 1, 1, 1, ptr(4))
	require.NoError(t, err)
	assert.Equal(t, "8.25", found.Price.StringFixed(2))

	var count int64
	db.Unscoped().Model(&model.ShippingRate{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestExtraWeightChargeRepo_FindActive(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewExtraWeightChargeRepository(db)
	ctx := context.Background()

	db.Create(&model.ExtraWeightCharge{ZoneID: 1, PricePerKg: decimal.RequireFromString("1.10"), IsActive: true})
	db.Create(&model.ExtraWeightCharge{ZoneID: 1, DeliveryMethodID: ptr(2), PricePerKg: decimal.RequireFromString("1.50"), IsActive: false})

	zoneOnly, err := repo.FindActive(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "1.10", zoneOnly.PricePerKg.StringFixed(2))

	_, err = repo.FindActive(ctx, 1, ptr(2))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "停用的行不可见")
}

func TestFreeShippingRuleRepo_FindActive(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewFreeShippingRuleRepository(db)
	ctx := context.Background()

	db.Create(&model.ProducerFreeShippingRule{ProducerID: 1, ZoneID: ptr(2), Threshold: decimal.RequireFromString("50"), IsActive: true})
	db.Create(&model.ProducerFreeShippingRule{ProducerID: 1, Threshold: decimal.RequireFromString("80"), IsActive: true})

	rule, err := repo.FindActive(ctx, 1, ptr(2), nil)
	require.NoError(t, err)
	assert.Equal(t, "50.00", rule.Threshold.StringFixed(2))

	global, err := repo.FindActive(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "80.00", global.Threshold.StringFixed(2))

	_, err = repo.FindActive(ctx, 1, ptr(2), ptr(3))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDiscountRuleRepo_Find(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewDiscountRuleRepository(db)
	ctx := context.Background()

	db.Create(&model.MultiProducerDiscountRule{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, DiscountPercentage: decimal.NewFromInt(10), MinProducersRequired: 2})
	db.Create(&model.MultiProducerDiscountRule{ProducerID: ptr(5), ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, DiscountPercentage: decimal.NewFromInt(25), MinProducersRequired: 3})

	def, err := repo.Find(ctx, nil, 1, 1, 1)
	require.NoError(t, err)
	assert.True(t, def.DiscountPercentage.Equal(decimal.NewFromInt(10)))

	specific, err := repo.Find(ctx, ptr(5), 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, specific.MinProducersRequired)
}

func TestCODSettingRepo_GetActive(t *testing.T) {
	db := setupShippingRepoTestDB(t)
	repo := NewCODSettingRepository(db)
	ctx := context.Background()

	_, err := repo.GetActive(ctx)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	db.Create(&model.CODSetting{Cost: decimal.RequireFromString("2.50"), IsActive: true})
	setting, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.50", setting.Cost.StringFixed(2))
}
