package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/inventory"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"
)

// 評分常數
const (
	// TopN 推薦集合的大小
	TopN = 10

	// 未啟用對應過濾條件時的中性分數
	neutralScore = 50

	// 飲食分數
	dietMatchScore = 100
	dietMissScore  = 0

	// 備餐時間分數：超出上限給固定低分，上限內依比例分五段
	prepOverBudgetScore = 20

	// 巨量營養素分數
	macroInRangeScore = 100
	macroInvalidScore = 0

	// 料理風格分數
	cuisineMatchScore = 100
	cuisineMissScore  = 0

	// 即期食材加分：依剩餘天數分三級
	expiringTier1Days  = 1
	expiringTier2Days  = 3
	expiringTier3Days  = 7
	expiringTier1Bonus = 30
	expiringTier2Bonus = 20
	expiringTier3Bonus = 10
)

// 備餐時間五段，由快到慢
var prepBuckets = []struct {
	maxRatio float64
	score    int
}{
	{0.2, 100},
	{0.4, 85},
	{0.6, 70},
	{0.8, 55},
	{1.0, 40},
}

// Options 單次評分所需的輸入
type Options struct {
	Filters       common.RecipeFilters
	ExpiringItems []common.InventoryItem
	Now           time.Time
}

// Score 對單一食譜計算五個子分數與加權綜合分數
func Score(recipe common.Recipe, opts Options) common.ScoredRecipe {
	scores := common.SubScores{
		Diet:     dietScore(recipe, opts.Filters),
		MealPrep: mealPrepScore(recipe, opts.Filters),
		Macros:   macroScore(recipe, opts.Filters.Macros),
		Cuisine:  cuisineScore(recipe, opts.Filters),
	}

	expiring, used := expiringScore(recipe, opts)
	scores.Expiring = expiring

	w := ProfileWeights(opts.Filters.WeightsProfile)
	total := float64(scores.Diet)*w.Diet +
		float64(scores.MealPrep)*w.MealPrep +
		float64(scores.Macros)*w.Macros +
		float64(scores.Cuisine)*w.Cuisine +
		float64(scores.Expiring)*w.Expiring

	return common.ScoredRecipe{
		Recipe:                  recipe,
		Scores:                  scores,
		TotalScore:              int(math.Round(total)),
		UsedExpiringIngredients: used,
	}
}

// Rank 過濾、評分並排序候選食譜，回傳綜合分數遞減的前 TopN 名。
// 同分時保留候選清單的原始順序。候選池被飲食過濾清空時回傳空集合，不報錯。
func Rank(recipes []common.Recipe, opts Options) []common.ScoredRecipe {
	scored := make([]common.ScoredRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		if opts.Filters.DietEnabled && !dietMatches(recipe, opts.Filters.Diet) {
			continue
		}
		scored = append(scored, Score(recipe, opts))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})

	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored
}

// dietMatches 檢查食譜是否符合指定飲食；未知或 none 一律視為符合
func dietMatches(recipe common.Recipe, diet string) bool {
	switch strings.ToLower(strings.TrimSpace(diet)) {
	case "vegan":
		return recipe.DietFlags.Vegan
	case "vegetarian":
		return recipe.DietFlags.Vegetarian
	case "glutenfree", "gluten free", "gluten-free":
		return recipe.DietFlags.GlutenFree
	case "ketogenic", "keto":
		return recipe.DietFlags.Ketogenic
	default:
		return true
	}
}

func dietScore(recipe common.Recipe, filters common.RecipeFilters) int {
	if !filters.DietEnabled {
		return neutralScore
	}
	if dietMatches(recipe, filters.Diet) {
		return dietMatchScore
	}
	return dietMissScore
}

func mealPrepScore(recipe common.Recipe, filters common.RecipeFilters) int {
	if filters.MaxPrepMinutes <= 0 {
		return neutralScore
	}
	if recipe.PrepMinutes > filters.MaxPrepMinutes {
		return prepOverBudgetScore
	}
	ratio := float64(recipe.PrepMinutes) / float64(filters.MaxPrepMinutes)
	for _, bucket := range prepBuckets {
		if ratio <= bucket.maxRatio {
			return bucket.score
		}
	}
	return prepBuckets[len(prepBuckets)-1].score
}

// macroScore 四種營養素各自算比例分數後取整數平均
func macroScore(recipe common.Recipe, macros common.MacroFilters) int {
	nutrientScores := []int{
		nutrientScore(recipe.Nutrients.Calories, macros.Calories),
		nutrientScore(recipe.Nutrients.Protein, macros.Protein),
		nutrientScore(recipe.Nutrients.Carbs, macros.Carbs),
		nutrientScore(recipe.Nutrients.Fat, macros.Fat),
	}

	sum := 0
	for _, s := range nutrientScores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(nutrientScores))))
}

// nutrientScore 範圍內（含邊界）給滿分；低於下限按 value/min 比例；
// 高於上限按 max/value 比例；缺營養資料給固定無效分
func nutrientScore(value *float64, r common.MacroRange) int {
	if r.Min == nil && r.Max == nil {
		return neutralScore
	}
	if value == nil {
		return macroInvalidScore
	}
	v := *value
	if r.Min != nil && v < *r.Min {
		if *r.Min <= 0 {
			return macroInvalidScore
		}
		return int(math.Round(v / *r.Min * 100))
	}
	if r.Max != nil && v > *r.Max {
		if v <= 0 {
			return macroInvalidScore
		}
		return int(math.Round(*r.Max / v * 100))
	}
	return macroInRangeScore
}

func cuisineScore(recipe common.Recipe, filters common.RecipeFilters) int {
	cuisine := strings.ToLower(strings.TrimSpace(filters.Cuisine))
	if cuisine == "" {
		return neutralScore
	}
	for _, c := range recipe.Cuisines {
		if strings.ToLower(strings.TrimSpace(c)) == cuisine {
			return cuisineMatchScore
		}
	}
	return cuisineMissScore
}

// expiringScore 對每個和即期庫存同名的食譜食材加上分級加分，
// 並回傳配對到的食材名稱供顯示
func expiringScore(recipe common.Recipe, opts Options) (int, []string) {
	if !opts.Filters.ExpiringEnabled || len(opts.ExpiringItems) == 0 {
		return 0, nil
	}

	score := 0
	var used []string
	for _, ing := range recipe.Ingredients {
		for _, item := range opts.ExpiringItems {
			if !inventory.NamesMatch(ing.Name, item.Name) {
				continue
			}
			days := inventory.DaysUntilExpire(item, opts.Now)
			bonus := 0
			switch {
			case days <= expiringTier1Days:
				bonus = expiringTier1Bonus
			case days <= expiringTier2Days:
				bonus = expiringTier2Bonus
			case days <= expiringTier3Days:
				bonus = expiringTier3Bonus
			}
			if bonus > 0 {
				score += bonus
				used = append(used, ing.Name)
			}
			break
		}
	}
	return score, used
}
