package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func baseRecipe(id int) common.Recipe {
	return common.Recipe{
		ID:          id,
		Title:       fmt.Sprintf("recipe-%d", id),
		PrepMinutes: 30,
		Cuisines:    []string{"Italian"},
		Nutrients: common.Nutrients{
			Calories: f(500),
			Protein:  f(30),
			Carbs:    f(40),
			Fat:      f(20),
		},
	}
}

func expiringItem(name string, daysLeft int) common.InventoryItem {
	return common.InventoryItem{
		Name:           name,
		Quantity:       5,
		ExpirationDate: scoreNow.Add(time.Duration(daysLeft) * 24 * time.Hour),
	}
}

// 未啟用任何過濾條件時，四個軸都是中性分、即期加分為零
func TestScoreNeutralDefaults(t *testing.T) {
	scored := Score(baseRecipe(1), Options{Now: scoreNow})

	assert.Equal(t, 50, scored.Scores.Diet)
	assert.Equal(t, 50, scored.Scores.MealPrep)
	assert.Equal(t, 50, scored.Scores.Macros)
	assert.Equal(t, 50, scored.Scores.Cuisine)
	assert.Equal(t, 0, scored.Scores.Expiring)
	// balanced：(50+50+50+50+0) × 0.2 = 40
	assert.Equal(t, 40, scored.TotalScore)
}

func TestDietScore(t *testing.T) {
	vegan := baseRecipe(1)
	vegan.DietFlags.Vegan = true
	meaty := baseRecipe(2)

	filters := common.RecipeFilters{DietEnabled: true, Diet: "vegan"}

	assert.Equal(t, 100, dietScore(vegan, filters))
	assert.Equal(t, 0, dietScore(meaty, filters))

	// 未知的飲食名稱一律視為符合
	filters.Diet = "carnivore"
	assert.Equal(t, 100, dietScore(meaty, filters))
}

func TestMealPrepScoreBuckets(t *testing.T) {
	tests := []struct {
		prep int
		max  int
		want int
	}{
		{10, 60, 100}, // 比例 0.167
		{20, 60, 85},  // 0.333
		{30, 60, 70},  // 0.5
		{45, 60, 55},  // 0.75
		{60, 60, 40},  // 剛好壓線
		{61, 60, 20},  // 超出上限
	}
	for _, tt := range tests {
		recipe := baseRecipe(1)
		recipe.PrepMinutes = tt.prep
		got := mealPrepScore(recipe, common.RecipeFilters{MaxPrepMinutes: tt.max})
		assert.Equal(t, tt.want, got, "prep=%d max=%d", tt.prep, tt.max)
	}
}

func TestNutrientScore(t *testing.T) {
	r := common.MacroRange{Min: f(20), Max: f(40)}

	assert.Equal(t, 100, nutrientScore(f(30), r))
	// 邊界值含在範圍內
	assert.Equal(t, 100, nutrientScore(f(20), r))
	assert.Equal(t, 100, nutrientScore(f(40), r))
	// 低於下限：10/20 = 50
	assert.Equal(t, 50, nutrientScore(f(10), r))
	// 高於上限：40/80 = 50
	assert.Equal(t, 50, nutrientScore(f(80), r))
	// 有設範圍但缺資料給無效分
	assert.Equal(t, 0, nutrientScore(nil, r))
	// 沒設範圍給中性分
	assert.Equal(t, 50, nutrientScore(f(30), common.MacroRange{}))
	assert.Equal(t, 50, nutrientScore(nil, common.MacroRange{}))
}

func TestMacroScoreMeanOfFour(t *testing.T) {
	recipe := baseRecipe(1)
	macros := common.MacroFilters{
		Calories: common.MacroRange{Max: f(600)}, // 範圍內 100
		Protein:  common.MacroRange{Min: f(60)},  // 30/60 = 50
		// Carbs、Fat 未設範圍，各 50
	}
	assert.Equal(t, 63, macroScore(recipe, macros)) // round((100+50+50+50)/4)
}

func TestCuisineScore(t *testing.T) {
	recipe := baseRecipe(1)

	assert.Equal(t, 50, cuisineScore(recipe, common.RecipeFilters{}))
	assert.Equal(t, 100, cuisineScore(recipe, common.RecipeFilters{Cuisine: "italian"}))
	assert.Equal(t, 0, cuisineScore(recipe, common.RecipeFilters{Cuisine: "thai"}))
}

func TestExpiringScoreTiers(t *testing.T) {
	recipe := baseRecipe(1)
	recipe.Ingredients = []common.RecipeIngredient{
		{ID: 1, Name: "milk"},
		{ID: 2, Name: "egg"},
		{ID: 3, Name: "flour"},
	}

	opts := Options{
		Filters: common.RecipeFilters{ExpiringEnabled: true},
		ExpiringItems: []common.InventoryItem{
			expiringItem("milk", 1), // +30
			expiringItem("eggs", 3), // 複數配對 +20
		},
		Now: scoreNow,
	}

	score, used := expiringScore(recipe, opts)
	assert.Equal(t, 50, score)
	assert.Equal(t, []string{"milk", "egg"}, used)
}

func TestExpiringScoreDisabled(t *testing.T) {
	recipe := baseRecipe(1)
	recipe.Ingredients = []common.RecipeIngredient{{Name: "milk"}}

	score, used := expiringScore(recipe, Options{
		ExpiringItems: []common.InventoryItem{expiringItem("milk", 1)},
		Now:           scoreNow,
	})
	assert.Zero(t, score)
	assert.Nil(t, used)
}

// useItUp 權重下，用到明天就到期食材的食譜要贏過其他條件更好的食譜
func TestRankUseItUpFavorsExpiring(t *testing.T) {
	saver := baseRecipe(1)
	saver.Ingredients = []common.RecipeIngredient{{Name: "spinach"}}
	other := baseRecipe(2)
	other.Cuisines = []string{"Thai"}

	opts := Options{
		Filters: common.RecipeFilters{
			ExpiringEnabled: true,
			Cuisine:         "thai", // other 在 cuisine 軸拿滿分
			WeightsProfile:  "useItUp",
		},
		ExpiringItems: []common.InventoryItem{expiringItem("spinach", 1)},
		Now:           scoreNow,
	}

	ranked := Rank([]common.Recipe{other, saver}, opts)
	require.Len(t, ranked, 2)
	assert.Equal(t, saver.ID, ranked[0].Recipe.ID)
	assert.Equal(t, []string{"spinach"}, ranked[0].UsedExpiringIngredients)
}

func TestRankDietFilterRemovesCandidates(t *testing.T) {
	meaty := baseRecipe(1)
	ranked := Rank([]common.Recipe{meaty}, Options{
		Filters: common.RecipeFilters{DietEnabled: true, Diet: "vegan"},
		Now:     scoreNow,
	})
	assert.Empty(t, ranked)
}

func TestRankTopNAndStableOrder(t *testing.T) {
	var recipes []common.Recipe
	for i := 1; i <= 15; i++ {
		recipes = append(recipes, baseRecipe(i))
	}

	ranked := Rank(recipes, Options{Now: scoreNow})
	require.Len(t, ranked, TopN)

	// 全部同分，穩定排序保留輸入順序
	for i, scored := range ranked {
		assert.Equal(t, i+1, scored.Recipe.ID)
	}
}

func TestProfileWeightsFallback(t *testing.T) {
	assert.Equal(t, profiles["balanced"], ProfileWeights("no-such-profile"))
	assert.Equal(t, profiles["quickMeals"], ProfileWeights("quickMeals"))
	assert.Contains(t, ProfileNames(), "useItUp")
}
