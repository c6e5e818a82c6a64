package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_shipping_v1/internal/model"
)

// whereNullable 可空外键条件：nil 生成 IS NULL
func whereNullable(db *gorm.DB, column string, id *int64) *gorm.DB {
	if id == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *id)
}

// ==================== Zone 接口定义 ====================

// ZoneRepository 区域与邮编前缀仓储接口
type ZoneRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ShippingZone, error)
	ListPrefixes(ctx context.Context) ([]model.PostalCodePrefix, error)
}

// ==================== Zone 实现 ====================

type zoneRepo struct {
	db *gorm.DB
}

// NewZoneRepository 创建区域仓储
func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepo{db: db}
}

func (r *zoneRepo) GetByID(ctx context.Context, id int64) (*model.ShippingZone, error) {
	var zone model.ShippingZone
	if err := r.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepo) ListPrefixes(ctx context.Context) ([]model.PostalCodePrefix, error) {
	var list []model.PostalCodePrefix
	err := r.db.WithContext(ctx).
		Order("LENGTH(prefix) DESC, prefix ASC").
		Find(&list).Error
	return list, err
}

// ==================== WeightTier 接口定义 ====================

// WeightTierRepository 重量档位仓储接口
type WeightTierRepository interface {
	ListOrdered(ctx context.Context) ([]model.WeightTier, error)
}

// ==================== WeightTier 实现 ====================

type weightTierRepo struct {
	db *gorm.DB
}

// NewWeightTierRepository 创建重量档位仓储
func NewWeightTierRepository(db *gorm.DB) WeightTierRepository {
	return &weightTierRepo{db: db}
}

func (r *weightTierRepo) ListOrdered(ctx context.Context) ([]model.WeightTier, error) {
	var list []model.WeightTier
	err := r.db.WithContext(ctx).
		Order("min_weight_grams ASC, id ASC").
		Find(&list).Error
	return list, err
}

// ==================== DeliveryMethod 接口定义 ====================

// DeliveryMethodRepository 配送方式仓储接口
type DeliveryMethodRepository interface {
	ListActive(ctx context.Context) ([]model.DeliveryMethod, error)
	// ListEnabledIDsForProducer 生产者启用的配送方式 ID（不判断配送方式本身是否启用）
	ListEnabledIDsForProducer(ctx context.Context, producerID int64) ([]int64, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== DeliveryMethod 实现 ====================

type deliveryMethodRepo struct {
	db *gorm.DB
}

// NewDeliveryMethodRepository 创建配送方式仓储
func NewDeliveryMethodRepository(db *gorm.DB) DeliveryMethodRepository {
	return &deliveryMethodRepo{db: db}
}

func (r *deliveryMethodRepo) ListActive(ctx context.Context) ([]model.DeliveryMethod, error) {
	var list []model.DeliveryMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *deliveryMethodRepo) ListEnabledIDsForProducer(ctx context.Context, producerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ProducerSupportedMethod{}).
		Where("producer_id = ? AND is_enabled = ?", producerID, true).
		Order("delivery_method_id ASC").
		Pluck("delivery_method_id", &ids).Error
	return ids, err
}

func (r *deliveryMethodRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryMethod{}).
		Count(&count).Error
	return count, err
}

// ==================== ShippingRate 接口定义 ====================

// ShippingRateRepository 基础运费仓储接口
type ShippingRateRepository interface {
	// FindRate 精确查找一行；producerID 为 nil 时查默认价
	FindRate(ctx context.Context, zoneID, tierID, methodID int64, producerID *int64) (*model.ShippingRate, error)
	Upsert(ctx context.Context, rate *model.ShippingRate) error
}

// ==================== ShippingRate 实现 ====================

type shippingRateRepo struct {
	db *gorm.DB
}

// NewShippingRateRepository 创建运费仓储
func NewShippingRateRepository(db *gorm.DB) ShippingRateRepository {
	return &shippingRateRepo{db: db}
}

func (r *shippingRateRepo) FindRate(ctx context.Context, zoneID, tierID, methodID int64, producerID *int64) (*model.ShippingRate, error) {
	var rate model.ShippingRate
	q := r.db.WithContext(ctx).
		Where("zone_id = ? AND weight_tier_id = ? AND delivery_method_id = ?", zoneID, tierID, methodID)
	err := whereNullable(q, "producer_id", producerID).
		Order("id DESC").
		Take(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// Upsert 按 (区域, 档位, 配送方式, 生产者) 写入运费；
// 同一元组的行已被软删除时恢复该行，避免撞上唯一索引
func (r *shippingRateRepo) Upsert(ctx context.Context, rate *model.ShippingRate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ShippingRate
		q := tx.Unscoped().Where("zone_id = ? AND weight_tier_id = ? AND delivery_method_id = ?",
			rate.ZoneID, rate.WeightTierID, rate.DeliveryMethodID)
		err := whereNullable(q, "producer_id", rate.ProducerID).
			Order("deleted_at IS NOT NULL").
			Order("id DESC").
			Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(rate).Error
		}
		if err != nil {
			return err
		}
		rate.ID = existing.ID
		rate.CreatedAt = existing.CreatedAt
		if existing.DeletedAt.Valid {
			return tx.Unscoped().Model(&existing).Updates(map[string]interface{}{
				"price":      rate.Price,
				"deleted_at": nil,
			}).Error
		}
		return tx.Model(&existing).Update("price", rate.Price).Error
	})
}

// ==================== ExtraWeightCharge 接口定义 ====================

// ExtraWeightChargeRepository 超重续重仓储接口
type ExtraWeightChargeRepository interface {
	// FindActive methodID 为 nil 时查区域通用行
	FindActive(ctx context.Context, zoneID int64, methodID *int64) (*model.ExtraWeightCharge, error)
}

// ==================== ExtraWeightCharge 实现 ====================

type extraWeightChargeRepo struct {
	db *gorm.DB
}

// NewExtraWeightChargeRepository 创建超重续重仓储
func NewExtraWeightChargeRepository(db *gorm.DB) ExtraWeightChargeRepository {
	return &extraWeightChargeRepo{db: db}
}

func (r *extraWeightChargeRepo) FindActive(ctx context.Context, zoneID int64, methodID *int64) (*model.ExtraWeightCharge, error) {
	var charge model.ExtraWeightCharge
	q := r.db.WithContext(ctx).Where("zone_id = ? AND is_active = ?", zoneID, true)
	err := whereNullable(q, "delivery_method_id", methodID).
		Order("id DESC").
		Take(&charge).Error
	if err != nil {
		return nil, err
	}
	return &charge, nil
}
