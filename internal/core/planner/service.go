package planner

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/inventory"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/mealplan"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/provider"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/scoring"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// 無候選結果時的原因說明
const (
	ReasonEmptyInventory = "inventory is empty, nothing to cook from"
	ReasonNoCatalogMatch = "no recipes in the catalog match the available ingredients"
	ReasonDietFiltered   = "diet filter eliminated every candidate recipe"
)

// Service 推薦引擎的進入點，串接庫存分析、目錄查詢、評分與計畫組裝
type Service struct {
	config  *config.Config
	catalog provider.CatalogProvider
	cost    *shopping.CostAggregator
	rng     *rand.Rand
}

// NewService 創建推薦服務。rng 可注入以便測試，傳 nil 時使用時間種子。
func NewService(cfg *config.Config, catalog provider.CatalogProvider, cost *shopping.CostAggregator, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		config:  cfg,
		catalog: catalog,
		cost:    cost,
		rng:     rng,
	}
}

// RecommendResult 推薦結果；NoResults 為真時 Reason 說明候選池為空的原因
type RecommendResult struct {
	Recipes   []common.ScoredRecipe `json:"recipes"`
	NoResults bool                  `json:"no_results"`
	Reason    string                `json:"reason,omitempty"`
}

// Recommend 依庫存與過濾條件回傳評分最高的前幾名食譜。
// 候選池為空屬於正常結果而非錯誤，以原因字串回報。
func (s *Service) Recommend(ctx context.Context, items []common.InventoryItem, filters common.RecipeFilters) (RecommendResult, error) {
	now := time.Now()
	buckets := inventory.Analyze(items, now)

	names := usableNames(buckets)
	if len(names) == 0 {
		return RecommendResult{NoResults: true, Reason: ReasonEmptyInventory}, nil
	}

	candidates, err := s.catalog.FindByIngredients(ctx, names, s.config.Catalog.MaxMissing)
	if err != nil {
		return RecommendResult{}, err
	}
	if len(candidates) == 0 {
		return RecommendResult{NoResults: true, Reason: ReasonNoCatalogMatch}, nil
	}

	ranked := scoring.Rank(candidates, s.scoringOptions(buckets, filters, now))
	if len(ranked) == 0 {
		return RecommendResult{NoResults: true, Reason: ReasonDietFiltered}, nil
	}

	common.LogInfo("推薦完成",
		zap.Int("candidates", len(candidates)),
		zap.Int("ranked", len(ranked)),
	)
	return RecommendResult{Recipes: ranked}, nil
}

// PlanParams 餐點計畫的參數
type PlanParams struct {
	Meals        int
	AllowRepeats bool
	MaxRepeats   int
}

// PlanResult 餐點計畫結果
type PlanResult struct {
	Plan      []common.MealPlanEntry `json:"plan"`
	NoResults bool                   `json:"no_results"`
	Reason    string                 `json:"reason,omitempty"`
}

// MealPlan 組裝一份餐點計畫。
// 不允許重複時每一餐重新向目錄拉一批候選並排除已選過的；
// 允許重複時以單一批候選做平均分配，重複次數不超過 MaxRepeats。
func (s *Service) MealPlan(ctx context.Context, items []common.InventoryItem, filters common.RecipeFilters, params PlanParams) (PlanResult, error) {
	now := time.Now()
	buckets := inventory.Analyze(items, now)

	names := usableNames(buckets)
	if len(names) == 0 {
		return PlanResult{NoResults: true, Reason: ReasonEmptyInventory}, nil
	}

	meals := params.Meals
	if meals > s.config.Plan.MaxMeals {
		meals = s.config.Plan.MaxMeals
	}
	opts := s.scoringOptions(buckets, filters, now)

	var plan []common.MealPlanEntry
	if params.AllowRepeats {
		maxRepeats := params.MaxRepeats
		if maxRepeats <= 0 || maxRepeats > s.config.Plan.MaxRepeats {
			maxRepeats = s.config.Plan.MaxRepeats
		}
		// 目錄失敗視同零候選，降級為空計畫而不是讓整個請求失敗
		candidates, err := s.fetchRanked(ctx, names, opts, nil)
		if err != nil {
			common.LogWarn("候選拉取失敗，回傳空計畫", zap.Error(err))
			candidates = nil
		}
		plan = mealplan.AssembleBoundedRepeats(candidates, meals, maxRepeats)
	} else {
		fetch := func(ctx context.Context, exclude map[int]bool) ([]common.ScoredRecipe, error) {
			return s.fetchRanked(ctx, names, opts, exclude)
		}
		plan = mealplan.AssembleNoRepeats(ctx, fetch, meals, s.rng)
	}

	if len(plan) == 0 {
		return PlanResult{NoResults: true, Reason: ReasonNoCatalogMatch}, nil
	}

	common.LogInfo("餐點計畫完成",
		zap.Int("requested", params.Meals),
		zap.Int("assembled", len(plan)),
		zap.Bool("allow_repeats", params.AllowRepeats),
	)
	return PlanResult{Plan: plan}, nil
}

// ShoppingListResult 定價後的購物清單與預算比較
type ShoppingListResult struct {
	ShoppingList             []common.ShoppingListItem        `json:"shopping_list"`
	InventoryRecommendations []common.InventoryRecommendation `json:"inventory_recommendations"`
	ExpiringItems            []common.ExpiringListItem        `json:"expiring_items"`
	ItemsToBuy               int                              `json:"items_to_buy"`
	ItemsExpiring            int                              `json:"items_expiring"`
	TotalCost                float64                          `json:"total_cost"`
	Budget                   float64                          `json:"budget,omitempty"`
	OverBudget               bool                             `json:"over_budget"`
	BudgetDifference         float64                          `json:"budget_difference,omitempty"`
}

// ShoppingList 將餐點計畫對上庫存，產出定價後的購物清單與補貨建議。
// budget 小於等於零表示未設定預算。
func (s *Service) ShoppingList(ctx context.Context, plan []common.MealPlanEntry, items []common.InventoryItem, budget float64) (ShoppingListResult, error) {
	now := time.Now()
	buckets := inventory.Analyze(items, now)

	built := shopping.Build(plan, buckets, now)
	priced := s.cost.PriceList(ctx, built.ShoppingList)

	result := ShoppingListResult{
		ShoppingList:             priced.Items,
		InventoryRecommendations: built.InventoryRecommendations,
		ExpiringItems:            built.ExpiringItems,
		ItemsToBuy:               built.ItemsToBuy,
		ItemsExpiring:            built.ItemsExpiring,
		TotalCost:                priced.TotalCost,
	}
	if budget > 0 {
		result.Budget = budget
		result.OverBudget = priced.TotalCost > budget
		result.BudgetDifference = roundTo2(priced.TotalCost - budget)
	}

	common.LogInfo("購物清單完成",
		zap.Int("items_to_buy", result.ItemsToBuy),
		zap.Float64("total_cost", result.TotalCost),
		zap.Bool("over_budget", result.OverBudget),
	)
	return result, nil
}

// InventoryReport 回傳庫存分類結果
func (s *Service) InventoryReport(items []common.InventoryItem) inventory.Buckets {
	return inventory.Analyze(items, time.Now())
}

// fetchRanked 向目錄拉一批候選、排除指定識別碼後評分排序
func (s *Service) fetchRanked(ctx context.Context, names []string, opts scoring.Options, exclude map[int]bool) ([]common.ScoredRecipe, error) {
	candidates, err := s.catalog.FindByIngredients(ctx, names, s.config.Catalog.MaxMissing)
	if err != nil {
		return nil, err
	}
	if len(exclude) > 0 {
		filtered := candidates[:0]
		for _, c := range candidates {
			if !exclude[c.ID] {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	return scoring.Rank(candidates, opts), nil
}

// scoringOptions 組出單次評分所需的輸入；過期品不參與即期加分
func (s *Service) scoringOptions(buckets inventory.Buckets, filters common.RecipeFilters, now time.Time) scoring.Options {
	var expiring []common.InventoryItem
	if filters.ExpiringEnabled {
		expiring = append(expiring, buckets.ExpiringSoon...)
	}
	return scoring.Options{
		Filters:       filters,
		ExpiringItems: expiring,
		Now:           now,
	}
}

// usableNames 可用於搜尋目錄的庫存名稱（排除過期品）
func usableNames(buckets inventory.Buckets) []string {
	usable := make([]common.InventoryItem, 0, buckets.Total())
	usable = append(usable, buckets.WellStocked...)
	usable = append(usable, buckets.ExpiringSoon...)
	usable = append(usable, buckets.RunningLow...)
	return common.FormatIngredientNames(usable)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
