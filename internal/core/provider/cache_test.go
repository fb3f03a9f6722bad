package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheTestConfig(maxSize int, ttl time.Duration) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         maxSize,
			TTL:             ttl,
			CleanupInterval: time.Minute,
		},
	}
}

func TestCacheManagerSetGet(t *testing.T) {
	m := NewCacheManager(cacheTestConfig(8, time.Minute))
	defer m.Close()

	require.NoError(t, m.Set(context.Background(), "tomato;egg|3", `[{"id":1}]`))

	val, err := m.Get(context.Background(), "tomato;egg|3")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, val)

	_, err = m.Get(context.Background(), "other-query|3")
	assert.Error(t, err)
}

func TestCacheManagerTTLExpiry(t *testing.T) {
	m := NewCacheManager(cacheTestConfig(8, 10*time.Millisecond))
	defer m.Close()

	require.NoError(t, m.Set(context.Background(), "q", "v"))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(context.Background(), "q")
	assert.Error(t, err)
}

// 容量滿時先淘汰最久未使用的條目
func TestCacheManagerLRUEviction(t *testing.T) {
	m := NewCacheManager(cacheTestConfig(3, time.Minute))
	defer m.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("q%d", i), "v"))
	}

	// 觸碰 q0、q1，讓 q2 成為最久未使用
	time.Sleep(2 * time.Millisecond)
	_, _ = m.Get(ctx, "q0")
	_, _ = m.Get(ctx, "q1")

	require.NoError(t, m.Set(ctx, "q3", "v"))

	_, err := m.Get(ctx, "q2")
	assert.Error(t, err, "q2 should be evicted")
	_, err = m.Get(ctx, "q0")
	assert.NoError(t, err)
}

// 停用快取時所有操作都是 no-op
func TestCacheManagerDisabled(t *testing.T) {
	cfg := cacheTestConfig(8, time.Minute)
	cfg.Cache.Enabled = false

	m := NewCacheManager(cfg)
	assert.Nil(t, m)

	// nil 管理器照樣可以安全呼叫
	assert.NoError(t, m.Set(context.Background(), "q", "v"))
	_, err := m.Get(context.Background(), "q")
	assert.Error(t, err)
	assert.NoError(t, m.Close())
}

func TestCacheManagerStats(t *testing.T) {
	m := NewCacheManager(cacheTestConfig(8, time.Minute))
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "q", "v"))
	_, _ = m.Get(ctx, "q")
	_, _ = m.Get(ctx, "missing")

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}
