package scoring

// Weights 五個評分軸的權重，加總不需要等於 1，綜合分數是加權和而非平均
type Weights struct {
	Diet     float64 `json:"diet"`
	MealPrep float64 `json:"meal_prep"`
	Macros   float64 `json:"macros"`
	Cuisine  float64 `json:"cuisine"`
	Expiring float64 `json:"expiring"`
}

// DefaultProfile 未指定或未知的權重設定檔一律退回 balanced
const DefaultProfile = "balanced"

// 內建權重設定檔，皆為固定常數
var profiles = map[string]Weights{
	"balanced": {
		Diet:     0.2,
		MealPrep: 0.2,
		Macros:   0.2,
		Cuisine:  0.2,
		Expiring: 0.2,
	},
	"quickMeals": {
		Diet:     0.15,
		MealPrep: 0.45,
		Macros:   0.1,
		Cuisine:  0.1,
		Expiring: 0.2,
	},
	"macroFocused": {
		Diet:     0.15,
		MealPrep: 0.1,
		Macros:   0.5,
		Cuisine:  0.05,
		Expiring: 0.2,
	},
	"useItUp": {
		Diet:     0.1,
		MealPrep: 0.1,
		Macros:   0.1,
		Cuisine:  0.1,
		Expiring: 0.6,
	},
	"cuisineFirst": {
		Diet:     0.15,
		MealPrep: 0.1,
		Macros:   0.1,
		Cuisine:  0.45,
		Expiring: 0.2,
	},
}

// ProfileWeights 依名稱取得權重，未知名稱退回預設設定檔
func ProfileWeights(name string) Weights {
	if w, ok := profiles[name]; ok {
		return w
	}
	return profiles[DefaultProfile]
}

// ProfileNames 列出所有可用的設定檔名稱
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}
