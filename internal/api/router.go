package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ronny-capstone/smart-food-planner-sub000/internal/api/handlers/health"
	plannerHandler "github.com/ronny-capstone/smart-food-planner-sub000/internal/api/handlers/planner"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/api/middleware"
	plannerService "github.com/ronny-capstone/smart-food-planner-sub000/internal/core/planner"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/provider"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/core/shopping/pricecache"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/infrastructure/config"
	"github.com/ronny-capstone/smart-food-planner-sub000/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)，庫存與餐點計畫都是純 JSON
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *provider.CacheManager, priceStore pricecache.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 速率限制與請求去重
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("catalog_base_url", cfg.Catalog.BaseURL),
		zap.String("price_cache_backend", cfg.PriceCache.Backend),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化供應商客戶端
	catalogClient := provider.NewCatalogClient(cfg, cacheManager)
	priceClient := provider.NewPriceClient(cfg)

	// 初始化價格快取與成本彙總器
	priceCache := pricecache.New(priceStore)
	costAggregator := shopping.NewCostAggregator(priceClient, priceCache)

	// 初始化規劃服務
	planner := plannerService.NewService(cfg, catalogClient, costAggregator, nil)
	if planner == nil {
		common.LogError("Failed to initialize planner service")
		return nil, fmt.Errorf("failed to initialize planner service")
	}

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		req := c.Request.WithContext(ctx)
		c.Request = req

		// 設置配置與快取統計
		c.Set("config", cfg)
		c.Set("price_cache_stats", func() map[string]interface{} {
			return costAggregator.CacheStats()
		})

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := plannerHandler.NewHandler(planner)

		plannerGroup := api.Group("/planner")
		{
			// 評分推薦
			plannerGroup.POST("/recommend", handler.HandleRecommend)

			// 餐點計畫組裝
			plannerGroup.POST("/mealplan", handler.HandleMealPlan)

			// 定價購物清單
			plannerGroup.POST("/shopping-list", handler.HandleShoppingList)
		}

		inventoryGroup := api.Group("/inventory")
		{
			// 庫存分類報告
			inventoryGroup.POST("/report", handler.HandleInventoryReport)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
