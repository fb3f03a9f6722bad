package inventory

import (
	"math"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"
)

// 分類門檻
const (
	// ExpiredThreshold 剩餘天數低於此值視為過期
	ExpiredThreshold = 0
	// LowStockThreshold 數量小於等於此值視為庫存不足
	LowStockThreshold = 2
	// ExpiringSoonThreshold 剩餘天數小於等於此值視為即將過期
	ExpiringSoonThreshold = 3
)

// Buckets 庫存分類結果，四個桶互斥且涵蓋所有輸入項目
type Buckets struct {
	Expired      []common.InventoryItem `json:"expired"`
	RunningLow   []common.InventoryItem `json:"running_low"`
	ExpiringSoon []common.InventoryItem `json:"expiring_soon"`
	WellStocked  []common.InventoryItem `json:"well_stocked"`
}

// Total 分類後的項目總數
func (b Buckets) Total() int {
	return len(b.Expired) + len(b.RunningLow) + len(b.ExpiringSoon) + len(b.WellStocked)
}

// DaysUntilExpire 計算剩餘天數，無條件進位到整天
func DaysUntilExpire(item common.InventoryItem, now time.Time) int {
	return int(math.Ceil(item.ExpirationDate.Sub(now).Hours() / 24))
}

// Analyze 將庫存分類為 expired / runningLow / expiringSoon / wellStocked。
// 判斷順序固定：過期 > 庫存不足 > 即將過期 > 充足。
// 純函數，輸入列表不會被修改。
func Analyze(items []common.InventoryItem, now time.Time) Buckets {
	var buckets Buckets
	for _, item := range items {
		days := DaysUntilExpire(item, now)
		switch {
		case days < ExpiredThreshold:
			buckets.Expired = append(buckets.Expired, item)
		case item.Quantity <= LowStockThreshold:
			buckets.RunningLow = append(buckets.RunningLow, item)
		case days <= ExpiringSoonThreshold:
			buckets.ExpiringSoon = append(buckets.ExpiringSoon, item)
		default:
			buckets.WellStocked = append(buckets.WellStocked, item)
		}
	}
	return buckets
}

// ExpiringWithin 回傳在指定天數內到期（但尚未過期）的項目
func ExpiringWithin(items []common.InventoryItem, now time.Time, days int) []common.InventoryItem {
	var out []common.InventoryItem
	for _, item := range items {
		d := DaysUntilExpire(item, now)
		if d >= ExpiredThreshold && d <= days {
			out = append(out, item)
		}
	}
	return out
}
