package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_shipping_v1/pkg/logger"
)

// ==================== 测试辅助 ====================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheLookup(_ string, hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration, ...string) error {
	return errors.New("store down")
}
func (brokenStore) Forget(context.Context, ...string) error     { return nil }
func (brokenStore) ForgetTags(context.Context, ...string) error { return nil }

type price struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// ==================== Key ====================

func TestKey(t *testing.T) {
	producer := int64(7)
	assert.Equal(t, "shipping:rates:3:2:1:7", Key(CategoryRates, int64(3), int64(2), 1, &producer))
	assert.Equal(t, "shipping:rates:3:2:1:_", Key(CategoryRates, int64(3), int64(2), 1, (*int64)(nil)))
	assert.Equal(t, "shipping:zones:prefixes", Key(CategoryZones, "prefixes"))
	assert.NotEqual(t, Key(CategoryFreeShipping, int64(1), int64(2)), Key(CategoryFreeShipping, int64(12)))
}

func TestTTLs(t *testing.T) {
	ttls := DefaultTTLs()
	assert.Equal(t, 7*24*time.Hour, ttls.For(CategoryZones))
	assert.Equal(t, 6*time.Hour, ttls.For(CategoryRates))
	assert.Equal(t, fallbackTTL, TTLs{}.For(CategoryRates))
	assert.Equal(t, 7*24*time.Hour, ttls.Max())
}

// ==================== MemoryStore ====================

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))

	clock.Advance(time.Minute)
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok, "到期即失效")
	_, ok, _ = s.Get(ctx, "b")
	assert.True(t, ok, "ttl=0 永不过期")
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_ForgetTags(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Set(ctx, "r1", []byte("x"), time.Hour, "rates", "producer:1")
	_ = s.Set(ctx, "r2", []byte("x"), time.Hour, "rates", "producer:2")
	_ = s.Set(ctx, "z1", []byte("x"), time.Hour, "zones")

	require.NoError(t, s.ForgetTags(ctx, "producer:1"))
	_, ok, _ := s.Get(ctx, "r1")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "r2")
	assert.True(t, ok)

	require.NoError(t, s.ForgetTags(ctx, "rates"))
	_, ok, _ = s.Get(ctx, "r2")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "z1")
	assert.True(t, ok)

	require.NoError(t, s.Forget(ctx, "z1"))
	assert.Equal(t, 0, s.Len())
}

// ==================== Remember ====================

func TestRemember_ReadThrough(t *testing.T) {
	c := New(NewMemoryStore(), logger.NewNop(), nil)
	obs := &countingObserver{}
	c.SetObserver(obs)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (price, error) {
		calls++
		return price{Found: true, Value: "5.00"}, nil
	}

	key := Key(CategoryRates, int64(1), int64(1), int64(1), (*int64)(nil))
	for i := 0; i < 3; i++ {
		v, err := Remember(ctx, c, CategoryRates, key, nil, load)
		require.NoError(t, err)
		assert.Equal(t, "5.00", v.Value)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 1, obs.misses)

	require.NoError(t, c.ForgetCategories(ctx, CategoryRates))
	_, _ = Remember(ctx, c, CategoryRates, key, nil, load)
	assert.Equal(t, 2, calls)
}

func TestRemember_LoaderErrorNotCached(t *testing.T) {
	c := New(NewMemoryStore(), logger.NewNop(), nil)
	ctx := context.Background()

	calls := 0
	_, err := Remember(ctx, c, CategoryCOD, "k", nil, func(context.Context) (price, error) {
		calls++
		return price{}, errors.New("db down")
	})
	require.Error(t, err)

	v, err := Remember(ctx, c, CategoryCOD, "k", nil, func(context.Context) (price, error) {
		calls++
		return price{Found: true}, nil
	})
	require.NoError(t, err)
	assert.True(t, v.Found)
	assert.Equal(t, 2, calls)
}

func TestRemember_StoreFailureDegradesToLoad(t *testing.T) {
	c := New(brokenStore{}, logger.NewNop(), nil)
	v, err := Remember(context.Background(), c, CategoryTiers, "k", nil, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRemember_ProducerTag(t *testing.T) {
	c := New(NewMemoryStore(), logger.NewNop(), nil)
	ctx := context.Background()
	var calls int32
	load := func(context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	}

	_, _ = Remember(ctx, c, CategoryFreeShipping, "fs:9", []string{ProducerTag(9)}, load)
	require.NoError(t, c.ForgetProducer(ctx, 9))
	_, _ = Remember(ctx, c, CategoryFreeShipping, "fs:9", []string{ProducerTag(9)}, load)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRemember_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := New(NewMemoryStore(), logger.NewNop(), nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	load := func(ctx context.Context) (price, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return price{}, ctx.Err()
		case <-release:
			return price{Found: true, Value: "2.50"}, nil
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := Remember(ctxA, c, CategoryZones, "zones:prefixes", nil, load)
		errA <- err
	}()
	<-started

	type result struct {
		v   price
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := Remember(context.Background(), c, CategoryZones, "zones:prefixes", nil, load)
		resB <- result{v, err}
	}()
	time.Sleep(50 * time.Millisecond)

	// A 的请求超时只影响 A 自己
	cancelA()
	select {
	case err := <-errA:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("取消后调用方 A 未返回")
	}

	close(release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Equal(t, "2.50", r.v.Value)
	case <-time.After(time.Second):
		t.Fatal("调用方 B 未返回")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// ==================== RedisStore ====================

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	return mr, NewRedisStore(client, cfg, time.Hour, nil)
}

func TestRedisStore_SetGetExpire(t *testing.T) {
	mr, s := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute, "tag:a"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ForgetTags(t *testing.T) {
	mr, s := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k1", []byte("1"), time.Hour, "tag:rates"))
	require.NoError(t, s.Set(ctx, "k2", []byte("2"), time.Hour, "tag:rates", "tag:p1"))
	require.NoError(t, s.Set(ctx, "k3", []byte("3"), time.Hour, "tag:zones"))

	require.NoError(t, s.ForgetTags(ctx, "tag:rates"))
	assert.False(t, mr.Exists("k1"))
	assert.False(t, mr.Exists("k2"))
	assert.True(t, mr.Exists("k3"))
	assert.False(t, mr.Exists("tag:rates"))

	require.NoError(t, s.Forget(ctx, "k3"))
	assert.False(t, mr.Exists("k3"))
}

func TestRedisStore_BreakerOpens(t *testing.T) {
	mr, s := newTestRedis(t)
	mr.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := s.Get(ctx, "k")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
