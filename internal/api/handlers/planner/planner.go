package planner

import (
	"net/http"
	"time"

	plannerService "github.com/ronny-capstone/smart-food-planner-sub000/internal/core/planner"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 庫存到期日接受的格式，依序嘗試
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// InventoryItemRequest 請求中的單項庫存
type InventoryItemRequest struct {
	ID             int    `json:"id"`
	Name           string `json:"name" binding:"required"`
	Quantity       int    `json:"quantity" binding:"gte=0"`
	ExpirationDate string `json:"expiration_date" binding:"required"` // RFC3339 或 YYYY-MM-DD
}

// FiltersRequest 請求中的評分過濾條件
type FiltersRequest struct {
	Diet           string              `json:"diet,omitempty"`             // vegan / vegetarian / glutenFree / ketogenic / none
	Cuisine        string              `json:"cuisine,omitempty"`          // 料理風格，空字串表示不過濾
	MaxPrepMinutes int                 `json:"max_prep_minutes,omitempty"` // 備餐時間上限，0 表示不過濾
	Macros         common.MacroFilters `json:"macros,omitempty"`
	UseExpiring    bool                `json:"use_expiring"` // 是否優先消化即期食材
	WeightsProfile string              `json:"weights_profile,omitempty"`
}

// RecommendRequest 推薦請求
type RecommendRequest struct {
	Inventory []InventoryItemRequest `json:"inventory"`
	Filters   FiltersRequest         `json:"filters"`
}

// MealPlanRequest 餐點計畫請求
type MealPlanRequest struct {
	Inventory    []InventoryItemRequest `json:"inventory"`
	Filters      FiltersRequest         `json:"filters"`
	Meals        int                    `json:"meals" binding:"required,gte=1"`
	AllowRepeats bool                   `json:"allow_repeats"`
	MaxRepeats   int                    `json:"max_repeats,omitempty" binding:"omitempty,gte=1"`
}

// ShoppingListRequest 購物清單請求
type ShoppingListRequest struct {
	Plan      []common.MealPlanEntry `json:"plan"`
	Inventory []InventoryItemRequest `json:"inventory"`
	Budget    float64                `json:"budget,omitempty" binding:"omitempty,gte=0"`
}

// InventoryReportRequest 庫存分類請求
type InventoryReportRequest struct {
	Inventory []InventoryItemRequest `json:"inventory"`
}

// Handler 規劃器處理程序
type Handler struct {
	service *plannerService.Service
}

// NewHandler 創建新的規劃器處理程序
func NewHandler(service *plannerService.Service) *Handler {
	return &Handler{service: service}
}

// HandleRecommend 依庫存與過濾條件推薦食譜
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	items, err := toInventoryItems(req.Inventory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.LogInfo("開始處理推薦請求",
		zap.String("request_id", requestID),
		zap.Int("inventory_items", len(items)),
		zap.String("weights_profile", req.Filters.WeightsProfile),
	)

	result, err := h.service.Recommend(c.Request.Context(), items, toFilters(req.Filters))
	if err != nil {
		common.LogError("推薦處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleMealPlan 組裝餐點計畫
func (h *Handler) HandleMealPlan(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	items, err := toInventoryItems(req.Inventory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.LogInfo("開始處理餐點計畫請求",
		zap.String("request_id", requestID),
		zap.Int("meals", req.Meals),
		zap.Bool("allow_repeats", req.AllowRepeats),
	)

	params := plannerService.PlanParams{
		Meals:        req.Meals,
		AllowRepeats: req.AllowRepeats,
		MaxRepeats:   req.MaxRepeats,
	}
	result, err := h.service.MealPlan(c.Request.Context(), items, toFilters(req.Filters), params)
	if err != nil {
		common.LogError("餐點計畫處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Meal plan failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleShoppingList 產出定價後的購物清單
func (h *Handler) HandleShoppingList(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	items, err := toInventoryItems(req.Inventory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.LogInfo("開始處理購物清單請求",
		zap.String("request_id", requestID),
		zap.Int("plan_entries", len(req.Plan)),
		zap.Float64("budget", req.Budget),
	)

	result, err := h.service.ShoppingList(c.Request.Context(), req.Plan, items, req.Budget)
	if err != nil {
		common.LogError("購物清單處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Shopping list failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleInventoryReport 回傳庫存分類結果
func (h *Handler) HandleInventoryReport(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req InventoryReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	items, err := toInventoryItems(req.Inventory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.service.InventoryReport(items))
}

// ensureRequestID 確保每個請求有追蹤識別碼
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// toInventoryItems 解析請求庫存，到期日格式錯誤時整批拒絕
func toInventoryItems(reqs []InventoryItemRequest) ([]common.InventoryItem, error) {
	items := make([]common.InventoryItem, 0, len(reqs))
	for _, r := range reqs {
		expiry, err := parseDate(r.ExpirationDate)
		if err != nil {
			return nil, common.NewValidationError("invalid expiration_date for item " + r.Name)
		}
		items = append(items, common.InventoryItem{
			ID:             r.ID,
			Name:           r.Name,
			Quantity:       r.Quantity,
			ExpirationDate: expiry,
		})
	}
	return items, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// toFilters 將請求過濾條件轉為引擎過濾條件。
// 有指定 diet 且不為 none 時才啟用飲食過濾。
func toFilters(req FiltersRequest) common.RecipeFilters {
	return common.RecipeFilters{
		DietEnabled:     req.Diet != "" && req.Diet != "none",
		Diet:            req.Diet,
		Cuisine:         req.Cuisine,
		MaxPrepMinutes:  req.MaxPrepMinutes,
		Macros:          req.Macros,
		ExpiringEnabled: req.UseExpiring,
		WeightsProfile:  req.WeightsProfile,
	}
}
