package shopping

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/inventory"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"
)

// MinRestockDays 庫存不足的項目剩餘天數要超過此值才建議補貨，
// 快過期的東西補了也留不住
const MinRestockDays = 3

// BuildResult 購物清單建構結果
type BuildResult struct {
	ShoppingList             []common.ShoppingListItem        `json:"shopping_list"`
	InventoryRecommendations []common.InventoryRecommendation `json:"inventory_recommendations"`
	ExpiringItems            []common.ExpiringListItem        `json:"expiring_items"`
	ItemsToBuy               int                              `json:"items_to_buy"`
	ItemsExpiring            int                              `json:"items_expiring"`
}

// Build 將餐點計畫對上目前庫存，消耗持有的份量並累積去重後的採購清單，
// 再針對即期、過期、庫存不足的項目產生補貨建議。
// 純函數：庫存的扣減只發生在本次呼叫的工作副本上。
func Build(plan []common.MealPlanEntry, buckets inventory.Buckets, now time.Time) BuildResult {
	// 步驟 1：建立工作庫存索引（小寫名稱 → 數量），同名數量相加。
	// 過期品不算可用庫存。
	working := make(map[string]int)
	for _, group := range [][]common.InventoryItem{buckets.WellStocked, buckets.ExpiringSoon, buckets.RunningLow} {
		for _, item := range group {
			working[normalizeName(item.Name)] += item.Quantity
		}
	}

	// 步驟 2：逐食譜逐食材，庫存夠就扣一單位，不夠就併入採購清單
	listByID := make(map[int]*common.ShoppingListItem)
	var order []int
	for _, entry := range plan {
		for _, ing := range entry.Recipe.Recipe.Ingredients {
			if consumeMatching(working, ing.Name) {
				continue
			}

			line, ok := listByID[ing.ID]
			if !ok {
				listByID[ing.ID] = &common.ShoppingListItem{
					IngredientID:   ing.ID,
					Name:           ing.Name,
					Quantity:       ing.Amount,
					Unit:           ing.Unit,
					ServingsNeeded: 1,
					Recipes:        []string{entry.Recipe.Recipe.Title},
				}
				order = append(order, ing.ID)
				continue
			}

			line.Quantity += ing.Amount
			line.ServingsNeeded++
			appendTitle(line, entry.Recipe.Recipe.Title)
		}
	}

	// 步驟 3：再依正規化名稱合併，兩個識別碼的 "tomato" 不能出現兩行。
	// byName 記索引而非指標，append 擴容後指標會指向舊的底層陣列。
	byName := make(map[string]int)
	var list []common.ShoppingListItem
	for _, id := range order {
		line := listByID[id]
		key := normalizeName(line.Name)
		if idx, ok := byName[key]; ok {
			existing := &list[idx]
			existing.Quantity += line.Quantity
			existing.ServingsNeeded += line.ServingsNeeded
			for _, title := range line.Recipes {
				appendTitle(existing, title)
			}
			continue
		}
		list = append(list, *line)
		byName[key] = len(list) - 1
	}

	listNames := make([]string, 0, len(list))
	for _, line := range list {
		listNames = append(listNames, line.Name)
	}

	// 步驟 4：即期品已被清單涵蓋的列入 expiringItems，否則做補貨建議
	var expiring []common.ExpiringListItem
	var recommendations []common.InventoryRecommendation
	for _, item := range buckets.ExpiringSoon {
		days := inventory.DaysUntilExpire(item, now)
		if matchesAny(listNames, item.Name) {
			expiring = append(expiring, common.ExpiringListItem{
				ItemID:   item.ID,
				Name:     item.Name,
				DaysLeft: days,
			})
			continue
		}
		recommendations = append(recommendations, common.InventoryRecommendation{
			Name:   item.Name,
			Reason: fmt.Sprintf("expires in %d day(s)", days),
			Type:   common.ExpiringReplacement,
			Item:   item,
		})
	}
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].DaysLeft < expiring[j].DaysLeft
	})

	// 步驟 5：未被清單涵蓋的過期品一律建議汰換
	for _, item := range buckets.Expired {
		if matchesAny(listNames, item.Name) {
			continue
		}
		daysAgo := -inventory.DaysUntilExpire(item, now)
		recommendations = append(recommendations, common.InventoryRecommendation{
			Name:   item.Name,
			Reason: fmt.Sprintf("expired %d day(s) ago", daysAgo),
			Type:   common.ExpiringReplacement,
			Item:   item,
		})
	}

	// 步驟 6：庫存不足且離到期還有一段時間的才建議補貨
	for _, item := range buckets.RunningLow {
		if matchesAny(listNames, item.Name) {
			continue
		}
		if inventory.DaysUntilExpire(item, now) <= MinRestockDays {
			continue
		}
		recommendations = append(recommendations, common.InventoryRecommendation{
			Name:   item.Name,
			Reason: fmt.Sprintf("only %d left in stock", item.Quantity),
			Type:   common.LowStockReplacement,
			Item:   item,
		})
	}

	return BuildResult{
		ShoppingList:             list,
		InventoryRecommendations: recommendations,
		ExpiringItems:            expiring,
		ItemsToBuy:               len(list),
		ItemsExpiring:            len(expiring),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// consumeMatching 從工作庫存扣一單位同名項目，歸零即移除。
// 先試完全一致的鍵，再依字典序比對複數型，確保結果與走訪順序無關。
func consumeMatching(working map[string]int, name string) bool {
	exact := normalizeName(name)
	if qty, ok := working[exact]; ok && qty > 0 {
		consumeKey(working, exact, qty)
		return true
	}

	keys := make([]string, 0, len(working))
	for key := range working {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		qty := working[key]
		if qty <= 0 || !inventory.NamesMatch(key, name) {
			continue
		}
		consumeKey(working, key, qty)
		return true
	}
	return false
}

func consumeKey(working map[string]int, key string, qty int) {
	if qty == 1 {
		delete(working, key)
		return
	}
	working[key] = qty - 1
}

// appendTitle 追加食譜名稱，不重複
func appendTitle(line *common.ShoppingListItem, title string) {
	for _, t := range line.Recipes {
		if t == title {
			return
		}
	}
	line.Recipes = append(line.Recipes, title)
}

func matchesAny(names []string, name string) bool {
	for _, n := range names {
		if inventory.NamesMatch(n, name) {
			return true
		}
	}
	return false
}
