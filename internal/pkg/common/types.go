package common

import (
	"fmt"
	"strings"
	"time"
)

// InventoryItem 使用者庫存中的一項食材
type InventoryItem struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// RecipeIngredient 食譜所需的食材
type RecipeIngredient struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Nutrients 食譜的營養資訊，缺值以 nil 表示
type Nutrients struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// DietFlags 食譜的飲食屬性
type DietFlags struct {
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
	GlutenFree bool `json:"gluten_free"`
	Ketogenic  bool `json:"ketogenic"`
}

// Recipe 目錄供應商回傳的食譜，引擎內部只讀
type Recipe struct {
	ID          int                `json:"id"`
	Title       string             `json:"title"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Nutrients   Nutrients          `json:"nutrients"`
	Cuisines    []string           `json:"cuisines"`
	DietFlags   DietFlags          `json:"diet_flags"`
	PrepMinutes int                `json:"prep_minutes"`
}

// SubScores 五個評分軸的分數
type SubScores struct {
	Diet     int `json:"diet"`
	MealPrep int `json:"meal_prep"`
	Macros   int `json:"macros"`
	Cuisine  int `json:"cuisine"`
	Expiring int `json:"expiring"`
}

// ScoredRecipe 評分後的食譜，每次請求重新計算、不落地
type ScoredRecipe struct {
	Recipe                  Recipe    `json:"recipe"`
	Scores                  SubScores `json:"scores"`
	TotalScore              int       `json:"total_score"`
	UsedExpiringIngredients []string  `json:"used_expiring_ingredients"`
}

// MealPlanEntry 餐點計畫中的一餐，meal_number 由 1 起算
type MealPlanEntry struct {
	Recipe     ScoredRecipe `json:"recipe"`
	MealNumber int          `json:"meal_number"`
}

// ShoppingListItem 購物清單中的一行，依食材識別碼與正規化名稱去重
type ShoppingListItem struct {
	IngredientID   int      `json:"ingredient_id"`
	Name           string   `json:"name"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit,omitempty"`
	ServingsNeeded int      `json:"servings_needed"`
	Recipes        []string `json:"recipes"`
	ItemCost       float64  `json:"item_cost"`
}

// RecommendationType 庫存建議的種類
type RecommendationType string

const (
	ExpiringReplacement RecommendationType = "expiring-replacement"
	LowStockReplacement RecommendationType = "low-stock-replacement"
)

// InventoryRecommendation 補貨建議，僅供參考、不計入採購總額
type InventoryRecommendation struct {
	Name   string             `json:"name"`
	Reason string             `json:"reason"`
	Type   RecommendationType `json:"type"`
	Item   InventoryItem      `json:"item"`
}

// ExpiringListItem 購物清單涵蓋到的即期庫存
type ExpiringListItem struct {
	ItemID   int    `json:"item_id"`
	Name     string `json:"name"`
	DaysLeft int    `json:"days_left"`
}

// IngredientPrice 單價供應商的查詢結果
type IngredientPrice struct {
	IngredientID int     `json:"ingredient_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

// MacroRange 單一營養素的上下限，nil 表示未設定
type MacroRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// MacroFilters 四種營養素的範圍過濾
type MacroFilters struct {
	Calories MacroRange `json:"calories"`
	Protein  MacroRange `json:"protein"`
	Carbs    MacroRange `json:"carbs"`
	Fat      MacroRange `json:"fat"`
}

// RecipeFilters 使用者選擇的評分過濾條件
type RecipeFilters struct {
	DietEnabled     bool         `json:"diet_enabled"`
	Diet            string       `json:"diet"`
	Cuisine         string       `json:"cuisine"`
	MaxPrepMinutes  int          `json:"max_prep_minutes"`
	Macros          MacroFilters `json:"macros"`
	ExpiringEnabled bool         `json:"expiring_enabled"`
	WeightsProfile  string       `json:"weights_profile"`
}

// FormatIngredientNames 將庫存名稱整理為小寫、去空白、去重的列表
func FormatIngredientNames(items []InventoryItem) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// FormatCost 金額統一輸出到小數點後兩位
func FormatCost(cost float64) string {
	return fmt.Sprintf("%.2f", cost)
}
