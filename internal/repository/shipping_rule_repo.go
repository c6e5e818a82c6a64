package repository

import (
	"context"

	"gorm.io/gorm"

	"marketplace_shipping_v1/internal/model"
)

// ==================== FreeShippingRule 接口定义 ====================

// FreeShippingRuleRepository 包邮规则仓储接口
type FreeShippingRuleRepository interface {
	// FindActive 按 (zone, method) 的精确组合查找，nil 表示该维度为空
	FindActive(ctx context.Context, producerID int64, zoneID, methodID *int64) (*model.ProducerFreeShippingRule, error)
}

// ==================== FreeShippingRule 实现 ====================

type freeShippingRuleRepo struct {
	db *gorm.DB
}

// NewFreeShippingRuleRepository 创建包邮规则仓储
func NewFreeShippingRuleRepository(db *gorm.DB) FreeShippingRuleRepository {
	return &freeShippingRuleRepo{db: db}
}

func (r *freeShippingRuleRepo) FindActive(ctx context.Context, producerID int64, zoneID, methodID *int64) (*model.ProducerFreeShippingRule, error) {
	var rule model.ProducerFreeShippingRule
	q := r.db.WithContext(ctx).Where("producer_id = ? AND is_active = ?", producerID, true)
	q = whereNullable(q, "zone_id", zoneID)
	err := whereNullable(q, "delivery_method_id", methodID).
		Order("id DESC").
		Take(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ==================== DiscountRule 接口定义 ====================

// DiscountRuleRepository 多生产者折扣规则仓储接口
type DiscountRuleRepository interface {
	// Find producerID 为 nil 时查默认规则
	Find(ctx context.Context, producerID *int64, zoneID, tierID, methodID int64) (*model.MultiProducerDiscountRule, error)
}

// ==================== DiscountRule 实现 ====================

type discountRuleRepo struct {
	db *gorm.DB
}

// NewDiscountRuleRepository 创建折扣规则仓储
func NewDiscountRuleRepository(db *gorm.DB) DiscountRuleRepository {
	return &discountRuleRepo{db: db}
}

func (r *discountRuleRepo) Find(ctx context.Context, producerID *int64, zoneID, tierID, methodID int64) (*model.MultiProducerDiscountRule, error) {
	var rule model.MultiProducerDiscountRule
	q := r.db.WithContext(ctx).
		Where("zone_id = ? AND weight_tier_id = ? AND delivery_method_id = ?", zoneID, tierID, methodID)
	err := whereNullable(q, "producer_id", producerID).
		Order("id DESC").
		Take(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ==================== CODSetting 接口定义 ====================

// CODSettingRepository 货到付款配置仓储接口
type CODSettingRepository interface {
	GetActive(ctx context.Context) (*model.CODSetting, error)
}

// ==================== CODSetting 实现 ====================

type codSettingRepo struct {
	db *gorm.DB
}

// NewCODSettingRepository 创建货到付款配置仓储
func NewCODSettingRepository(db *gorm.DB) CODSettingRepository {
	return &codSettingRepo{db: db}
}

func (r *codSettingRepo) GetActive(ctx context.Context) (*model.CODSetting, error) {
	var setting model.CODSetting
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id DESC").
		Take(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
