package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PriceClient 食材單價查詢客戶端。
// 查無價格時回傳 nil 而非錯誤，未知成本是合法的結果。
type PriceClient struct {
	config *config.Config
	client *resty.Client
}

// NewPriceClient 創建價格查詢客戶端
func NewPriceClient(cfg *config.Config) *PriceClient {
	client := resty.New().
		SetBaseURL(cfg.Price.BaseURL).
		SetTimeout(cfg.Price.Timeout).
		SetQueryParam("apiKey", cfg.Price.APIKey)

	return &PriceClient{
		config: cfg,
		client: client,
	}
}

// ingredientInformation 供應商回應中與價格相關的欄位
type ingredientInformation struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EstimatedCost *struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"estimatedCost"`
}

// Price 查詢指定食材在給定數量與單位下的估計單價。
// 供應商以美分回報，這裡統一換算成美元並保留兩位小數。
func (c *PriceClient) Price(ctx context.Context, ingredientID int, amount float64, unit string) (*common.IngredientPrice, error) {
	start := time.Now()

	req := c.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(ingredientID))
	if amount > 0 {
		req.SetQueryParam("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	}
	if unit != "" {
		req.SetQueryParam("unit", unit)
	}

	resp, err := req.Get("/food/ingredients/{id}/information")
	if err != nil {
		common.LogProviderCall("price", time.Since(start), err, "")
		return nil, fmt.Errorf("failed to fetch ingredient price: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// 目錄中查不到此食材，視為未知成本
		common.LogProviderCall("price", time.Since(start), nil, "")
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("price lookup returned status %d", resp.StatusCode())
		common.LogProviderCall("price", time.Since(start), err, "")
		return nil, err
	}

	var info ingredientInformation
	if err := common.ParseJSONBytes(resp.Body(), &info); err != nil {
		common.LogProviderCall("price", time.Since(start), err, "")
		return nil, fmt.Errorf("%w: %v", common.ErrProviderContract, err)
	}
	common.LogProviderCall("price", time.Since(start), nil, "")

	if info.EstimatedCost == nil {
		common.LogDebug("食材無估計價格",
			zap.Int("ingredient_id", ingredientID),
		)
		return nil, nil
	}

	price := info.EstimatedCost.Value
	if info.EstimatedCost.Unit == "" || info.EstimatedCost.Unit == "US Cents" {
		price = math.Round(price) / 100
	}

	return &common.IngredientPrice{
		IngredientID: info.ID,
		Name:         info.Name,
		Price:        price,
		Amount:       amount,
		Unit:         unit,
	}, nil
}
