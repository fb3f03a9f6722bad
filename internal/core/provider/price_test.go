package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Price: config.PriceConfig{
			BaseURL: baseURL,
			APIKey:  "test-key",
			Timeout: 5 * time.Second,
		},
	}
}

func TestPriceConvertsCentsToDollars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/ingredients/42/information", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("amount"))
		assert.Equal(t, "cup", r.URL.Query().Get("unit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42,
			"name": "milk",
			"estimatedCost": {"value": 179.9, "unit": "US Cents"}
		}`))
	}))
	defer server.Close()

	client := NewPriceClient(priceTestConfig(server.URL))
	price, err := client.Price(context.Background(), 42, 2, "cup")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 42, price.IngredientID)
	assert.Equal(t, "milk", price.Name)
	assert.Equal(t, 1.8, price.Price)
	assert.Equal(t, 2.0, price.Amount)
}

// 查無此食材視為未知成本，不是錯誤
func TestPriceNotFoundReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewPriceClient(priceTestConfig(server.URL))
	price, err := client.Price(context.Background(), 42, 1, "unit")
	require.NoError(t, err)
	assert.Nil(t, price)
}

// 回應存在但沒有估價欄位，同樣視為未知成本
func TestPriceMissingEstimatedCost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "name": "unicorn dust"}`))
	}))
	defer server.Close()

	client := NewPriceClient(priceTestConfig(server.URL))
	price, err := client.Price(context.Background(), 42, 1, "unit")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestPriceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewPriceClient(priceTestConfig(server.URL))
	_, err := client.Price(context.Background(), 42, 1, "unit")
	assert.Error(t, err)
}
