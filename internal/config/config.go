package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"marketplace_shipping_v1/pkg/cache"
)

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Shipping ShippingConfig `mapstructure:"shipping"`
	CacheTTL CacheTTLConfig `mapstructure:"cache_ttl"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name           string        `mapstructure:"name"`
	Env            string        `mapstructure:"env"`
	LogLevel       string        `mapstructure:"log_level"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置；未启用时使用进程内缓存
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ShippingConfig 运费引擎常量
type ShippingConfig struct {
	DefaultZoneID               int64   `mapstructure:"default_zone_id"`
	VolumetricDivisor           float64 `mapstructure:"volumetric_divisor"`
	ExtraWeightThresholdGrams   int64   `mapstructure:"extra_weight_threshold_grams"`
	DefaultExtraWeightRatePerKg string  `mapstructure:"default_extra_weight_rate_per_kg"`
	DefaultCODCost              string  `mapstructure:"default_cod_cost"`
	Currency                    string  `mapstructure:"currency"`
}

// CacheTTLConfig 各类缓存 TTL
type CacheTTLConfig struct {
	Zones        time.Duration `mapstructure:"zones"`
	Tiers        time.Duration `mapstructure:"tiers"`
	Methods      time.Duration `mapstructure:"methods"`
	Rates        time.Duration `mapstructure:"rates"`
	ExtraWeight  time.Duration `mapstructure:"extra_weight"`
	FreeShipping time.Duration `mapstructure:"free_shipping"`
	Discounts    time.Duration `mapstructure:"discounts"`
	COD          time.Duration `mapstructure:"cod"`
}

// TasksConfig 定时任务配置
type TasksConfig struct {
	CacheWarmEnabled bool   `mapstructure:"cache_warm_enabled"`
	CacheWarmSpec    string `mapstructure:"cache_warm_spec"`
}

// AdminConfig 运营接口配置；Secret 为空时不开放运营接口
type AdminConfig struct {
	Secret        string        `mapstructure:"secret"`
	Issuer        string        `mapstructure:"issuer"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	FlushCooldown time.Duration `mapstructure:"flush_cooldown"`
}

// TTLs 转换为缓存层使用的 TTL 表
func (c CacheTTLConfig) TTLs() cache.TTLs {
	return cache.TTLs{
		cache.CategoryZones:        c.Zones,
		cache.CategoryTiers:        c.Tiers,
		cache.CategoryMethods:      c.Methods,
		cache.CategoryRates:        c.Rates,
		cache.CategoryExtraWeight:  c.ExtraWeight,
		cache.CategoryFreeShipping: c.FreeShipping,
		cache.CategoryDiscounts:    c.Discounts,
		cache.CategoryCOD:          c.COD,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "marketplace-shipping")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.request_timeout", 10*time.Second)

	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("shipping.default_zone_id", 1)
	v.SetDefault("shipping.volumetric_divisor", 5000)
	v.SetDefault("shipping.extra_weight_threshold_grams", 10000)
	v.SetDefault("shipping.default_extra_weight_rate_per_kg", "0.90")
	v.SetDefault("shipping.default_cod_cost", "2.00")
	v.SetDefault("shipping.currency", "EUR")

	ttls := cache.DefaultTTLs()
	for _, cat := range cache.AllCategories() {
		v.SetDefault("cache_ttl."+string(cat), ttls.For(cat))
	}

	v.SetDefault("tasks.cache_warm_enabled", true)
	v.SetDefault("tasks.cache_warm_spec", "0 */30 * * * *")

	v.SetDefault("admin.secret", "")
	v.SetDefault("admin.issuer", "marketplace-shipping")
	v.SetDefault("admin.token_ttl", 12*time.Hour)
	v.SetDefault("admin.flush_cooldown", 30*time.Second)
}

// Load 加载配置文件；path 为空时只使用默认值与环境变量（前缀 SHIPPING_）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHIPPING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Shipping.DefaultZoneID <= 0 {
		return fmt.Errorf("shipping.default_zone_id must be positive")
	}
	if c.Shipping.VolumetricDivisor <= 0 {
		return fmt.Errorf("shipping.volumetric_divisor must be positive")
	}
	if c.Shipping.ExtraWeightThresholdGrams < 0 {
		return fmt.Errorf("shipping.extra_weight_threshold_grams must not be negative")
	}
	if c.Admin.FlushCooldown < 0 {
		return fmt.Errorf("admin.flush_cooldown must not be negative")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}
