package provider

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CatalogProvider 食譜目錄供應商契約
type CatalogProvider interface {
	FindByIngredients(ctx context.Context, names []string, maxMissing int) ([]common.Recipe, error)
}

// CatalogClient Spoonacular 風格的目錄客戶端。
// 先以食材名稱搜尋候選，再批次補齊營養與屬性資訊。
type CatalogClient struct {
	config       *config.Config
	client       *resty.Client
	cacheManager *CacheManager
}

// NewCatalogClient 創建目錄客戶端
func NewCatalogClient(cfg *config.Config, cacheManager *CacheManager) *CatalogClient {
	client := resty.New().
		SetBaseURL(cfg.Catalog.BaseURL).
		SetTimeout(cfg.Catalog.Timeout).
		SetQueryParam("apiKey", cfg.Catalog.APIKey)

	return &CatalogClient{
		config:       cfg,
		client:       client,
		cacheManager: cacheManager,
	}
}

// ---------------- 供應商回應的中繼結構 ----------------

type searchHit struct {
	ID                    int `json:"id"`
	MissedIngredientCount int `json:"missedIngredientCount"`
}

type recipeInformation struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	ReadyInMinutes      int      `json:"readyInMinutes"`
	Cuisines            []string `json:"cuisines"`
	Diets               []string `json:"diets"`
	Vegan               bool     `json:"vegan"`
	Vegetarian          bool     `json:"vegetarian"`
	GlutenFree          bool     `json:"glutenFree"`
	ExtendedIngredients []struct {
		ID     int     `json:"id"`
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"extendedIngredients"`
	Nutrition struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

// ------------------------------------------------------

// FindByIngredients 依可用食材查詢候選食譜。
// 同一組名稱在 TTL 內重複查詢時直接使用快取結果。
func (c *CatalogClient) FindByIngredients(ctx context.Context, names []string, maxMissing int) ([]common.Recipe, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := buildCatalogKey(names, maxMissing)
	if c.cacheManager != nil {
		if val, err := c.cacheManager.Get(ctx, query); err == nil && val != "" {
			var recipes []common.Recipe
			if err := common.ParseJSON(val, &recipes); err == nil {
				return recipes, nil
			}
		}
	}

	start := time.Now()
	ids, err := c.searchByIngredients(ctx, names, maxMissing)
	if err != nil {
		common.LogProviderCall("catalog", time.Since(start), err, "")
		return nil, err
	}
	if len(ids) == 0 {
		common.LogProviderCall("catalog", time.Since(start), nil, "")
		return nil, nil
	}

	recipes, err := c.fetchInformation(ctx, ids)
	common.LogProviderCall("catalog", time.Since(start), err, "")
	if err != nil {
		return nil, err
	}

	if c.cacheManager != nil {
		if val, err := common.ToJSON(recipes); err == nil {
			_ = c.cacheManager.Set(ctx, query, val)
		}
	}

	return recipes, nil
}

// searchByIngredients 第一段查詢：名稱 → 候選識別碼
func (c *CatalogClient) searchByIngredients(ctx context.Context, names []string, maxMissing int) ([]int, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ingredients": strings.Join(names, ","),
			"number":      strconv.Itoa(c.config.Catalog.BatchSize),
			"ranking":     "2",
		}).
		Get("/recipes/findByIngredients")
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d", resp.StatusCode())
	}

	var hits []searchHit
	if err := common.ParseJSONBytes(resp.Body(), &hits); err != nil {
		// 供應商回傳無法解析的格式屬於契約違反，向上拋硬錯誤
		return nil, fmt.Errorf("%w: %v", common.ErrProviderContract, err)
	}

	ids := make([]int, 0, len(hits))
	for _, hit := range hits {
		if maxMissing >= 0 && hit.MissedIngredientCount > maxMissing {
			continue
		}
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// fetchInformation 第二段查詢：識別碼 → 完整食譜（含營養）
func (c *CatalogClient) fetchInformation(ctx context.Context, ids []int) ([]common.Recipe, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":              strings.Join(idStrs, ","),
			"includeNutrition": "true",
		}).
		Get("/recipes/informationBulk")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe information: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("recipe information returned status %d", resp.StatusCode())
	}

	var infos []recipeInformation
	if err := common.ParseJSONBytes(resp.Body(), &infos); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrProviderContract, err)
	}

	recipes := make([]common.Recipe, 0, len(infos))
	for _, info := range infos {
		recipes = append(recipes, toRecipe(info))
	}

	common.LogDebug("目錄查詢完成",
		zap.Int("requested", len(ids)),
		zap.Int("returned", len(recipes)),
	)
	return recipes, nil
}

// toRecipe 將供應商的鬆散回應收斂成嚴格的內部 Recipe，
// 之後的評分邏輯不再需要防禦性的欄位檢查
func toRecipe(info recipeInformation) common.Recipe {
	recipe := common.Recipe{
		ID:          info.ID,
		Title:       info.Title,
		Cuisines:    info.Cuisines,
		PrepMinutes: info.ReadyInMinutes,
		DietFlags: common.DietFlags{
			Vegan:      info.Vegan,
			Vegetarian: info.Vegetarian,
			GlutenFree: info.GlutenFree,
			Ketogenic:  containsFold(info.Diets, "ketogenic"),
		},
		Nutrients: common.Nutrients{
			Calories: nutrientByName(info, "Calories"),
			Protein:  nutrientByName(info, "Protein"),
			Carbs:    nutrientByName(info, "Net Carbohydrates"),
			Fat:      nutrientByName(info, "Fat"),
		},
	}

	for _, ing := range info.ExtendedIngredients {
		recipe.Ingredients = append(recipe.Ingredients, common.RecipeIngredient{
			ID:     ing.ID,
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
		})
	}

	return recipe
}

func nutrientByName(info recipeInformation, name string) *float64 {
	for _, n := range info.Nutrition.Nutrients {
		if strings.EqualFold(n.Name, name) {
			amount := n.Amount
			return &amount
		}
	}
	return nil
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

// buildCatalogKey 以排序後的名稱組快取鍵，輸入順序不影響命中
func buildCatalogKey(names []string, maxMissing int) string {
	sorted := make([]string, len(names))
	for i, n := range names {
		sorted[i] = strings.ToLower(strings.TrimSpace(n))
	}
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%d", strings.Join(sorted, ";"), maxMissing)
}
