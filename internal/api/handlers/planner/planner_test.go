package planner

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	plannerService "github.com/ronny-capstone/smart-food-planner-sub000/internal/core/planner"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping/pricecache"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	recipes []common.Recipe
}

func (c *stubCatalog) FindByIngredients(ctx context.Context, names []string, maxMissing int) ([]common.Recipe, error) {
	return c.recipes, nil
}

type stubPriceProvider struct{}

func (stubPriceProvider) Price(ctx context.Context, ingredientID int, amount float64, unit string) (*common.IngredientPrice, error) {
	return &common.IngredientPrice{IngredientID: ingredientID, Price: amount, Amount: amount}, nil
}

func newTestRouter(catalog *stubCatalog) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Catalog: config.CatalogConfig{MaxMissing: 3},
		Plan:    config.PlanConfig{MaxMeals: 21, MaxRepeats: 3},
	}
	cost := shopping.NewCostAggregator(stubPriceProvider{}, pricecache.New(pricecache.NewMemoryStore()))
	svc := plannerService.NewService(cfg, catalog, cost, rand.New(rand.NewSource(5)))
	handler := NewHandler(svc)

	router := gin.New()
	router.POST("/planner/recommend", handler.HandleRecommend)
	router.POST("/planner/mealplan", handler.HandleMealPlan)
	router.POST("/planner/shopping-list", handler.HandleShoppingList)
	router.POST("/inventory/report", handler.HandleInventoryReport)
	return router
}

func doPost(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func inventoryJSON(daysFromNow int) string {
	date := time.Now().Add(time.Duration(daysFromNow) * 24 * time.Hour).Format("2006-01-02")
	return `[{"id": 1, "name": "rice", "quantity": 5, "expiration_date": "` + date + `"}]`
}

func TestHandleRecommendSuccess(t *testing.T) {
	catalog := &stubCatalog{recipes: []common.Recipe{
		{ID: 1, Title: "Congee", PrepMinutes: 30},
	}}
	router := newTestRouter(catalog)

	w := doPost(router, "/planner/recommend", `{"inventory": `+inventoryJSON(30)+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result plannerService.RecommendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.NoResults)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "Congee", result.Recipes[0].Recipe.Title)
}

func TestHandleRecommendNoResultsIsSuccess(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	w := doPost(router, "/planner/recommend", `{"inventory": []}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result plannerService.RecommendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.NoResults)
	assert.NotEmpty(t, result.Reason)
}

func TestHandleRecommendBadJSON(t *testing.T) {
	router := newTestRouter(&stubCatalog{})
	w := doPost(router, "/planner/recommend", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRecommendBadDate(t *testing.T) {
	router := newTestRouter(&stubCatalog{})
	w := doPost(router, "/planner/recommend", `{"inventory": [{"id": 1, "name": "rice", "quantity": 5, "expiration_date": "next tuesday"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMealPlanSuccess(t *testing.T) {
	catalog := &stubCatalog{recipes: []common.Recipe{
		{ID: 1, Title: "A"}, {ID: 2, Title: "B"},
	}}
	router := newTestRouter(catalog)

	w := doPost(router, "/planner/mealplan", `{"inventory": `+inventoryJSON(30)+`, "meals": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result plannerService.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Plan, 2)
}

func TestHandleMealPlanRequiresMeals(t *testing.T) {
	router := newTestRouter(&stubCatalog{})
	w := doPost(router, "/planner/mealplan", `{"inventory": `+inventoryJSON(30)+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleShoppingListSuccess(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	body := `{
		"inventory": ` + inventoryJSON(30) + `,
		"budget": 10,
		"plan": [{
			"meal_number": 1,
			"recipe": {
				"recipe": {
					"id": 1, "title": "Curry",
					"ingredients": [{"id": 7, "name": "chicken", "amount": 1, "unit": "lb"}]
				}
			}
		}]
	}`
	w := doPost(router, "/planner/shopping-list", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result plannerService.ShoppingListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.ShoppingList, 1)
	assert.Equal(t, "chicken", result.ShoppingList[0].Name)
	assert.False(t, result.OverBudget)
}

func TestHandleInventoryReport(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	w := doPost(router, "/inventory/report", `{"inventory": `+inventoryJSON(1)+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	var buckets struct {
		ExpiringSoon []common.InventoryItem `json:"expiring_soon"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buckets))
	assert.Len(t, buckets.ExpiringSoon, 1)
}

func TestHandleRequestIDEcho(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/inventory/report", strings.NewReader(`{"inventory": []}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
