package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// BreakerConfig 熔断配置
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // 半开状态允许的请求数
	Interval         time.Duration // 闭合状态下清零计数的周期
	Timeout          time.Duration // 打开后多久进入半开
	FailureThreshold uint32        // 连续失败多少次后熔断
}

// DefaultBreakerConfig 默认熔断配置
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "shipping-cache",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// RedisStore Redis 存储，标签用 Set 维护成员键；所有调用经过熔断器，
// Redis 故障时快速失败，由上层按未命中处理
type RedisStore struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker
	tagTTL  time.Duration
}

// NewRedisStore 创建 Redis 存储
// tagTTL: 标签集合的过期时间，应不小于最长的缓存 TTL
func NewRedisStore(client redis.UniversalClient, cfg BreakerConfig, tagTTL time.Duration, onStateChange func(name string, from, to gobreaker.State)) *RedisStore {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: onStateChange,
	}
	return &RedisStore{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		tagTTL:  tagTTL,
	}
}

// State 熔断器当前状态
func (s *RedisStore) State() gobreaker.State {
	return s.breaker.State()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		b, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, err
	}
	b, _ := res.([]byte)
	if b == nil {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			for _, tag := range tags {
				pipe.SAdd(ctx, tag, key)
				if s.tagTTL > 0 {
					pipe.Expire(ctx, tag, s.tagTTL)
				}
			}
			return nil
		})
		return nil, err
	})
	return err
}

func (s *RedisStore) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	return err
}

func (s *RedisStore) ForgetTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tag := tag
		_, err := s.breaker.Execute(func() (interface{}, error) {
			members, err := s.client.SMembers(ctx, tag).Result()
			if err != nil {
				return nil, err
			}
			return nil, s.client.Del(ctx, append(members, tag)...).Err()
		})
		if err != nil {
			return err
		}
	}
	return nil
}
