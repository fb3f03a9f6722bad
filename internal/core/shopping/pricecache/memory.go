package pricecache

import (
	"context"
	"sync"
)

// MemoryStore 記憶體後端，測試與單機部署用
type MemoryStore struct {
	mu     sync.RWMutex
	prices map[int]float64
}

// NewMemoryStore 建立記憶體後端
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prices: make(map[int]float64),
	}
}

// Get 讀取單價
func (s *MemoryStore) Get(ctx context.Context, ingredientID int) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[ingredientID]
	return price, ok, nil
}

// Put 寫入單價
func (s *MemoryStore) Put(ctx context.Context, ingredientID int, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[ingredientID] = price
	return nil
}
