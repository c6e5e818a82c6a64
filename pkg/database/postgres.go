package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketplace_shipping_v1/pkg/logger"
)

// Options 连接参数
type Options struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration // 慢查询阈值
	Debug           bool          // 打印所有 SQL，开发环境用
}

// NewGormLogger 把 GORM 日志接到 zap；默认只打印慢查询和错误
func NewGormLogger(log logger.Logger, slow time.Duration, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return gormlogger.New(zap.NewStdLog(log.Zap().Named("gorm")), gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Open 初始化 PostgreSQL 连接
func Open(opts Options, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: NewGormLogger(log, opts.SlowThreshold, opts.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if err := ConfigurePool(db, opts); err != nil {
		return nil, err
	}

	log.Infof(context.Background(), "[DB] 数据库连接成功")
	return db, nil
}

// ConfigurePool 设置连接池参数；零值使用默认
func ConfigurePool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}

	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 10
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 100
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}

	// 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	// 设置打开数据库连接的最大数量
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	// 设置了连接可复用的最大时间
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	return nil
}

// Ping 健康检查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
