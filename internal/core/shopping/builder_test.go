package shopping

import (
	"testing"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/inventory"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func stockItem(id int, name string, qty, expiresInDays int) common.InventoryItem {
	return common.InventoryItem{
		ID:             id,
		Name:           name,
		Quantity:       qty,
		ExpirationDate: buildNow.Add(time.Duration(expiresInDays) * 24 * time.Hour),
	}
}

func planEntry(title string, ingredients ...common.RecipeIngredient) common.MealPlanEntry {
	return common.MealPlanEntry{
		Recipe: common.ScoredRecipe{
			Recipe: common.Recipe{Title: title, Ingredients: ingredients},
		},
	}
}

func ing(id int, name string, amount float64, unit string) common.RecipeIngredient {
	return common.RecipeIngredient{ID: id, Name: name, Amount: amount, Unit: unit}
}

func analyze(items ...common.InventoryItem) inventory.Buckets {
	return inventory.Analyze(items, buildNow)
}

// 庫存被第一道菜吃光後，第二道的需求進清單，
// 而被消耗掉的食材不會再出現在補貨建議裡
func TestBuildConsumedStockBecomesSingleLine(t *testing.T) {
	buckets := analyze(stockItem(1, "egg", 1, 30))
	plan := []common.MealPlanEntry{
		planEntry("Omelette", ing(100, "egg", 2, "unit")),
		planEntry("Fried Rice", ing(100, "egg", 2, "unit")),
	}

	result := Build(plan, buckets, buildNow)

	require.Len(t, result.ShoppingList, 1)
	line := result.ShoppingList[0]
	assert.Equal(t, 100, line.IngredientID)
	// 庫存的一顆蛋抵掉第一道的需求，第二道整份進清單
	assert.Equal(t, 2.0, line.Quantity)
	assert.Equal(t, 1, line.ServingsNeeded)
	assert.Equal(t, []string{"Fried Rice"}, line.Recipes)

	for _, rec := range result.InventoryRecommendations {
		assert.NotEqual(t, "egg", rec.Name)
	}
}

func TestBuildSufficientStockMeansNothingToBuy(t *testing.T) {
	buckets := analyze(stockItem(1, "rice", 10, 60))
	plan := []common.MealPlanEntry{
		planEntry("Congee", ing(200, "rice", 1, "cup")),
	}

	result := Build(plan, buckets, buildNow)
	assert.Empty(t, result.ShoppingList)
	assert.Zero(t, result.ItemsToBuy)
}

// 過期品不算可用庫存，需求照常進清單
func TestBuildExpiredStockNotConsumed(t *testing.T) {
	buckets := analyze(stockItem(1, "milk", 5, -2))
	plan := []common.MealPlanEntry{
		planEntry("Pancakes", ing(300, "milk", 1, "cup")),
	}

	result := Build(plan, buckets, buildNow)
	require.Len(t, result.ShoppingList, 1)
	assert.Equal(t, "milk", result.ShoppingList[0].Name)
}

// 不同識別碼、同名稱的食材要再合併成一行
func TestBuildMergesByNormalizedName(t *testing.T) {
	plan := []common.MealPlanEntry{
		planEntry("Salad", ing(1, "Tomato", 2, "unit")),
		planEntry("Soup", ing(2, "tomato", 3, "unit")),
	}

	result := Build(plan, analyze(), buildNow)
	require.Len(t, result.ShoppingList, 1)
	assert.Equal(t, 5.0, result.ShoppingList[0].Quantity)
	assert.Equal(t, 2, result.ShoppingList[0].ServingsNeeded)
	assert.ElementsMatch(t, []string{"Salad", "Soup"}, result.ShoppingList[0].Recipes)
}

// 合併對象之間隔著其他行時，中途的 append 擴容不能讓合併寫到舊陣列
func TestBuildMergeSurvivesInterveningLines(t *testing.T) {
	plan := []common.MealPlanEntry{
		planEntry("Salad", ing(1, "Tomato", 2, "unit")),
		planEntry("Stew", ing(2, "carrot", 1, "unit")),
		planEntry("Soup", ing(3, "tomato", 3, "unit")),
	}

	result := Build(plan, analyze(), buildNow)
	require.Len(t, result.ShoppingList, 2)

	var tomato *common.ShoppingListItem
	for i := range result.ShoppingList {
		if result.ShoppingList[i].IngredientID == 1 {
			tomato = &result.ShoppingList[i]
		}
	}
	require.NotNil(t, tomato)
	assert.Equal(t, 5.0, tomato.Quantity)
	assert.Equal(t, 2, tomato.ServingsNeeded)
	assert.ElementsMatch(t, []string{"Salad", "Soup"}, tomato.Recipes)
}

// 複數名稱也要對上庫存
func TestBuildPluralStockMatch(t *testing.T) {
	buckets := analyze(stockItem(1, "eggs", 5, 30))
	plan := []common.MealPlanEntry{
		planEntry("Omelette", ing(100, "egg", 2, "unit")),
	}

	result := Build(plan, buckets, buildNow)
	assert.Empty(t, result.ShoppingList)
}

func TestBuildExpiringItemsSortedAndCounted(t *testing.T) {
	buckets := analyze(
		stockItem(1, "milk", 5, 3),
		stockItem(2, "spinach", 5, 1),
	)
	plan := []common.MealPlanEntry{
		planEntry("Feast",
			ing(10, "milk", 2, "cup"),
			ing(11, "spinach", 1, "bunch"),
			ing(10, "milk", 2, "cup"), // 再要一次，庫存夠就不進清單
		),
	}
	// 庫存充足，需求全被抵掉、清單為空，
	// 兩項即期品因此變成補貨建議而非 expiringItems
	result := Build(plan, buckets, buildNow)

	assert.Empty(t, result.ShoppingList)
	require.Len(t, result.InventoryRecommendations, 2)
	for _, rec := range result.InventoryRecommendations {
		assert.Equal(t, common.ExpiringReplacement, rec.Type)
	}
}

// 即期品的名稱出現在購物清單時列入 expiringItems，按剩餘天數遞增排序
func TestBuildExpiringItemsOnList(t *testing.T) {
	buckets := analyze(
		stockItem(1, "milk", 3, 3),
		stockItem(2, "spinach", 3, 1),
	)
	// 需求超過庫存，兩個名稱都會留在清單上
	plan := []common.MealPlanEntry{
		planEntry("A", ing(10, "milk", 1, "cup"), ing(11, "spinach", 1, "bunch")),
		planEntry("B", ing(10, "milk", 1, "cup"), ing(11, "spinach", 1, "bunch")),
		planEntry("C", ing(10, "milk", 1, "cup"), ing(11, "spinach", 1, "bunch")),
		planEntry("D", ing(10, "milk", 1, "cup"), ing(11, "spinach", 1, "bunch")),
	}

	result := Build(plan, buckets, buildNow)
	require.Len(t, result.ExpiringItems, 2)
	assert.Equal(t, "spinach", result.ExpiringItems[0].Name)
	assert.Equal(t, 1, result.ExpiringItems[0].DaysLeft)
	assert.Equal(t, "milk", result.ExpiringItems[1].Name)
	assert.Equal(t, result.ItemsExpiring, len(result.ExpiringItems))
}

func TestBuildExpiredRecommendationReason(t *testing.T) {
	buckets := analyze(stockItem(1, "yogurt", 2, -3))

	result := Build(nil, buckets, buildNow)
	require.Len(t, result.InventoryRecommendations, 1)
	rec := result.InventoryRecommendations[0]
	assert.Equal(t, common.ExpiringReplacement, rec.Type)
	assert.Equal(t, "expired 3 day(s) ago", rec.Reason)
}

// 低庫存但快過期的不建議補，補了也放不久
func TestBuildLowStockRestockWindow(t *testing.T) {
	keeper := stockItem(1, "pasta", 1, 60)
	goner := stockItem(2, "cream", 1, 5)
	// cream 剩 5 天 > ExpiringSoonThreshold，歸 RunningLow；
	// 但距離到期超過 MinRestockDays，所以也會被建議補貨
	result := Build(nil, analyze(keeper, goner), buildNow)
	require.Len(t, result.InventoryRecommendations, 2)

	short := stockItem(3, "fish", 1, 2)
	// fish 歸 RunningLow 但剩 2 天已在補貨窗口外，不建議
	result = Build(nil, analyze(short), buildNow)
	assert.Empty(t, result.InventoryRecommendations)
}

func TestBuildLowStockReason(t *testing.T) {
	result := Build(nil, analyze(stockItem(1, "pasta", 2, 30)), buildNow)
	require.Len(t, result.InventoryRecommendations, 1)
	rec := result.InventoryRecommendations[0]
	assert.Equal(t, common.LowStockReplacement, rec.Type)
	assert.Equal(t, "only 2 left in stock", rec.Reason)
}

// 同一份輸入不論計畫內食材順序如何，結果都一致
func TestBuildOrderIndependence(t *testing.T) {
	buckets := func() inventory.Buckets {
		return analyze(stockItem(1, "egg", 1, 30), stockItem(2, "eggs", 1, 30))
	}

	planA := []common.MealPlanEntry{
		planEntry("X", ing(1, "egg", 1, "unit"), ing(2, "eggs", 1, "unit"), ing(1, "egg", 1, "unit")),
	}
	planB := []common.MealPlanEntry{
		planEntry("X", ing(2, "eggs", 1, "unit"), ing(1, "egg", 1, "unit"), ing(1, "egg", 1, "unit")),
	}

	resultA := Build(planA, buckets(), buildNow)
	resultB := Build(planB, buckets(), buildNow)
	assert.Equal(t, resultA.ItemsToBuy, resultB.ItemsToBuy)

	totalA, totalB := 0.0, 0.0
	for _, l := range resultA.ShoppingList {
		totalA += l.Quantity
	}
	for _, l := range resultB.ShoppingList {
		totalB += l.Quantity
	}
	assert.Equal(t, totalA, totalB)
}
