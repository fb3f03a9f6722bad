// Package pricecache 提供以食材識別碼為鍵的單價快取。
// 快取物件由成本彙總器持有，持久化後端可注入：
// 測試用記憶體 map，正式環境用 Redis。
package pricecache

import (
	"context"
	"sync"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 單價快取的持久化後端
type Store interface {
	Get(ctx context.Context, ingredientID int) (float64, bool, error)
	Put(ctx context.Context, ingredientID int, price float64) error
}

// Cache 行程級單價快取。讀寫以互斥鎖序列化，
// 同一識別碼在快取未命中時最多觸發一次外部查詢。
type Cache struct {
	mu    sync.Mutex
	store Store
	local map[int]float64
	stats struct {
		hits   int64
		misses int64
	}
}

// New 建立單價快取
func New(store Store) *Cache {
	return &Cache{
		store: store,
		local: make(map[int]float64),
	}
}

// GetOrFetch 回傳快取的單價；未命中時呼叫 fetch 取價並寫回。
// check → miss → fetch → store 全程持鎖，避免同一識別碼重複打供應商。
func (c *Cache) GetOrFetch(ctx context.Context, ingredientID int, fetch func(context.Context) (float64, error)) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if price, ok := c.local[ingredientID]; ok {
		c.stats.hits++
		common.LogCacheHit("price", "")
		return price, nil
	}

	if c.store != nil {
		if price, ok, err := c.store.Get(ctx, ingredientID); err == nil && ok {
			c.stats.hits++
			c.local[ingredientID] = price
			common.LogCacheHit("price", "")
			return price, nil
		}
	}

	c.stats.misses++
	common.LogCacheMiss("price", "")

	price, err := fetch(ctx)
	if err != nil {
		return 0, err
	}

	c.local[ingredientID] = price
	if c.store != nil {
		if err := c.store.Put(ctx, ingredientID, price); err != nil {
			// 持久化失敗不影響本次定價，下次行程重查即可
			common.LogWarn("單價快取寫入失敗",
				zap.Int("ingredient_id", ingredientID),
				zap.Error(err),
			)
		}
	}
	return price, nil
}

// Stats 快取統計信息
func (c *Cache) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]interface{}{
		"size":   len(c.local),
		"hits":   c.stats.hits,
		"misses": c.stats.misses,
	}
}
