package pricecache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RedisStore Redis 後端，跨行程共用同一份單價快取。
// 單價無 TTL，依契約快取終身有效。
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore 建立 Redis 後端並測試連接
func NewRedisStore(addr, keyPrefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Get 讀取單價
func (s *RedisStore) Get(ctx context.Context, ingredientID int) (float64, bool, error) {
	val, err := s.client.Get(ctx, s.key(ingredientID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cached price: %w", err)
	}

	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached price: %w", err)
	}
	return price, true, nil
}

// Put 寫入單價
func (s *RedisStore) Put(ctx context.Context, ingredientID int, price float64) error {
	if err := s.client.Set(ctx, s.key(ingredientID), strconv.FormatFloat(price, 'f', -1, 64), 0).Err(); err != nil {
		return fmt.Errorf("failed to set cached price: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(ingredientID int) string {
	return fmt.Sprintf("%s%d", s.keyPrefix, ingredientID)
}
