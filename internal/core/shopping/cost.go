package shopping

import (
	"context"
	"math"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping/pricecache"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// PriceProvider 單價供應商契約；回傳 nil 表示查無價格，不視為錯誤
type PriceProvider interface {
	Price(ctx context.Context, ingredientID int, amount float64, unit string) (*common.IngredientPrice, error)
}

// CostAggregator 負責替購物清單逐行定價並加總。
// 單價以食材識別碼為鍵快取，查價逐行循序執行。
type CostAggregator struct {
	provider PriceProvider
	cache    *pricecache.Cache
}

// NewCostAggregator 創建成本彙總器
func NewCostAggregator(provider PriceProvider, cache *pricecache.Cache) *CostAggregator {
	return &CostAggregator{
		provider: provider,
		cache:    cache,
	}
}

// PricedResult 定價結果
type PricedResult struct {
	Items     []common.ShoppingListItem `json:"items"`
	TotalCost float64                   `json:"total_cost"`
}

// PriceList 替每一行解析單價並計算總額。
// 單一食材查價失敗降級為零成本行，不會讓整批定價失敗。
func (a *CostAggregator) PriceList(ctx context.Context, list []common.ShoppingListItem) PricedResult {
	priced := make([]common.ShoppingListItem, len(list))
	copy(priced, list)

	total := 0.0
	for i := range priced {
		line := &priced[i]
		unitPrice, err := a.cache.GetOrFetch(ctx, line.IngredientID, func(ctx context.Context) (float64, error) {
			return a.fetchUnitPrice(ctx, line)
		})
		if err != nil {
			common.LogWarn("單價查詢失敗，本行以零成本計",
				zap.Int("ingredient_id", line.IngredientID),
				zap.String("name", line.Name),
				zap.Error(err),
			)
			line.ItemCost = 0
			continue
		}

		line.ItemCost = roundCost(unitPrice * line.Quantity)
		total += line.ItemCost
	}

	return PricedResult{
		Items:     priced,
		TotalCost: roundCost(total),
	}
}

// fetchUnitPrice 呼叫供應商取單價；查無價格視為零成本而非錯誤
func (a *CostAggregator) fetchUnitPrice(ctx context.Context, line *common.ShoppingListItem) (float64, error) {
	result, err := a.provider.Price(ctx, line.IngredientID, line.Quantity, line.Unit)
	if err != nil {
		return 0, err
	}
	if result == nil || result.Amount <= 0 {
		return 0, nil
	}
	return result.Price / result.Amount, nil
}

// CacheStats 快取統計信息
func (a *CostAggregator) CacheStats() map[string]interface{} {
	return a.cache.Stats()
}

func roundCost(v float64) float64 {
	return math.Round(v*100) / 100
}
