package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace_shipping_v1/internal/model"
	"marketplace_shipping_v1/pkg/logger"
)

func setupInitTestDB(t *testing.T) *gorm.DB {
	log := logger.NewNop()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: NewGormLogger(log, 0, false),
	})
	require.NoError(t, err)
	require.NoError(t, ConfigurePool(db, Options{MaxOpenConns: 1}))
	return db
}

func TestSplitStatements(t *testing.T) {
	script := `
-- 注释
CREATE INDEX a ON t (x);

  -- 另一条注释
CREATE INDEX b
    ON t (y)
    WHERE y IS NULL;
;
`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE INDEX a ON t (x)", stmts[0])
	assert.Contains(t, stmts[1], "WHERE y IS NULL")
}

func TestQuickInit_DefaultRateIsUnique(t *testing.T) {
	db := setupInitTestDB(t)
	require.NoError(t, QuickInit(db, logger.NewNop(), model.ShippingModels()))

	base := model.ShippingRate{ZoneID: 1, WeightTierID: 1, DeliveryMethodID: 1, Price: decimal.RequireFromString("5.00")}
	first := base
	require.NoError(t, db.Create(&first).Error)

	dup := base
	assert.Error(t, db.Create(&dup).Error, "同一元组的默认运费只能有一条")

	producer := int64(9)
	override := base
	override.ProducerID = &producer
	require.NoError(t, db.Create(&override).Error)

	dupOverride := base
	dupOverride.ProducerID = &producer
	assert.Error(t, db.Create(&dupOverride).Error)

	// 软删除后可以重新创建
	require.NoError(t, db.Delete(&first).Error)
	again := base
	assert.NoError(t, db.Create(&again).Error)
}

func TestQuickInit_IsIdempotent(t *testing.T) {
	db := setupInitTestDB(t)
	require.NoError(t, QuickInit(db, logger.NewNop(), model.ShippingModels()))
	require.NoError(t, QuickInit(db, logger.NewNop(), model.ShippingModels()))
}

func TestNewInitializer_SQLDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_zones.sql"),
		[]byte("CREATE INDEX IF NOT EXISTS idx_zone_name ON shipping_zones (name);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	db := setupInitTestDB(t)
	init, err := NewInitializer(db, logger.NewNop(), InitOptions{SQLDir: dir, Models: model.ShippingModels()})
	require.NoError(t, err)
	require.NoError(t, init.Initialize(t.Context()))

	assert.True(t, db.Migrator().HasIndex(&model.ShippingZone{}, "idx_zone_name"))
}

func TestNewInitializer_RequiresSource(t *testing.T) {
	_, err := NewInitializer(nil, logger.NewNop(), InitOptions{})
	assert.Error(t, err)
}
