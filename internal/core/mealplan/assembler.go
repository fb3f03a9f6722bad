package mealplan

import (
	"context"
	"math/rand"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// CandidateFetcher 取得一批排序後的候選食譜，排除已選過的識別碼。
// 由呼叫端包裝目錄查詢與評分；一輪查詢失敗只影響該輪。
type CandidateFetcher func(ctx context.Context, exclude map[int]bool) ([]common.ScoredRecipe, error)

// AssembleNoRepeats 不重複策略：每一餐重新取得候選批次，
// 排除已選過的食譜後隨機挑一道。某輪沒有可用候選就提前停止，
// 因此輸出長度可能少於要求。
func AssembleNoRepeats(ctx context.Context, fetch CandidateFetcher, meals int, rng *rand.Rand) []common.MealPlanEntry {
	chosen := make(map[int]bool, meals)
	var plan []common.MealPlanEntry

	for meal := 1; meal <= meals; meal++ {
		candidates, err := fetch(ctx, chosen)
		if err != nil {
			// 這一輪取候選失敗視為沒有候選，降級為較短的計畫
			common.LogWarn("候選食譜查詢失敗，提前結束計畫",
				zap.Int("meal", meal),
				zap.Error(err),
			)
			break
		}

		var fresh []common.ScoredRecipe
		for _, c := range candidates {
			if !chosen[c.Recipe.ID] {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) == 0 {
			break
		}

		pick := fresh[rng.Intn(len(fresh))]
		chosen[pick.Recipe.ID] = true
		plan = append(plan, common.MealPlanEntry{
			Recipe:     pick,
			MealNumber: len(plan) + 1,
		})
	}

	return plan
}

// AssembleBoundedRepeats 有限重複策略：只取一批候選，
// 總餐數上限為 min(要求餐數, 候選數 × 每道上限)，
// 每一餐分給目前重複次數最少且未達上限的食譜（同次數取候選順序在前者），
// 讓重複盡量平均分佈。
func AssembleBoundedRepeats(candidates []common.ScoredRecipe, meals, maxRepeats int) []common.MealPlanEntry {
	if len(candidates) == 0 || meals <= 0 || maxRepeats <= 0 {
		return nil
	}

	total := meals
	if limit := len(candidates) * maxRepeats; limit < total {
		total = limit
	}

	counts := make([]int, len(candidates))
	var plan []common.MealPlanEntry

	for meal := 1; meal <= total; meal++ {
		best := -1
		for i := range candidates {
			if counts[i] >= maxRepeats {
				continue
			}
			if best == -1 || counts[i] < counts[best] {
				best = i
			}
		}
		if best == -1 {
			break
		}

		counts[best]++
		plan = append(plan, common.MealPlanEntry{
			Recipe:     candidates[best],
			MealNumber: len(plan) + 1,
		})
	}

	return plan
}
