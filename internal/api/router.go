package api

import (
	"context"
	"net/http"
	"time"

	"aichef-rag/internal/api/handlers/health"
	searchHandler "aichef-rag/internal/api/handlers/search"
	userHandler "aichef-rag/internal/api/handlers/user"
	"aichef-rag/internal/api/middleware"
	"aichef-rag/internal/core/ai/cache"
	"aichef-rag/internal/core/ai/service"
	"aichef-rag/internal/core/image"
	"aichef-rag/internal/core/recipe"
	"aichef-rag/internal/core/retrieval"
	"aichef-rag/internal/core/user"
	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 列表搜索串行生圖，單請求耗時可達數十秒
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)，本服務只收文字
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由並組裝服務
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Username"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 初始化服務。對話與生圖後端未配置時注入 nil，
	// 管線各階段自行降級，服務照常啟動。
	var chat recipe.ChatClient
	var imageGen recipe.ImageGenerator
	if cfg.LLM.Enabled() {
		chat = service.NewService(cfg, cacheManager)
		imageGen = image.NewService(cfg)
	} else {
		common.LogWarn("SILICONFLOW_API_KEY 未配置，AI 功能降級為固定回覆")
	}

	retriever := retrieval.NewVectorRetriever(cfg)
	recipeSvc := recipe.NewService(cfg, retriever, chat, imageGen)
	userStore := user.NewStore(cfg)

	common.LogInfo("Services initialized",
		zap.Bool("llm_enabled", cfg.LLM.Enabled()),
		zap.Bool("cache_enabled", cacheManager != nil),
		zap.Bool("user_store_enabled", userStore != nil),
		zap.String("model", cfg.LLM.Model),
	)

	// 全局中間件：請求超時與配置注入
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		searchInstance := searchHandler.NewHandler(recipeSvc, userStore)
		api.POST("/search", searchInstance.HandleSearch)
		api.GET("/recipe", searchInstance.HandleGetRecipe)
		api.POST("/consult", searchInstance.HandleConsult)

		userInstance := userHandler.NewHandler(userStore)
		userGroup := api.Group("/user")
		{
			userGroup.GET("/profile", userInstance.HandleGetProfile)
			userGroup.POST("/profile", userInstance.HandleUpdateProfile)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
