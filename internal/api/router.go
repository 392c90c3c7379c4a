package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"prompt-playground/internal/api/handlers/health"
	playgroundHandler "prompt-playground/internal/api/handlers/playground"
	"prompt-playground/internal/api/middleware"
	"prompt-playground/internal/core/ai/service"
	"prompt-playground/internal/core/playground"
	"prompt-playground/internal/infrastructure/config"
	"prompt-playground/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務
type Dependencies struct {
	AIService  *service.Service
	DedupStore middleware.DedupStore
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.AIService == nil {
		return nil, errors.New("AI service is required")
	}
	if deps.DedupStore == nil {
		deps.DedupStore = middleware.NewMemoryDedupStore()
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 全局中間件：請求超時與設定注入
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrGatewayTimeout.ToErrorResponse(false))
		}
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrNotFound.ToErrorResponse(false))
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	options := playground.NewOptions(cfg.Playground.Models, playground.Defaults{
		Model:              cfg.Playground.DefaultModel,
		SystemPrompt:       cfg.Playground.SystemPrompt,
		UserPromptTemplate: cfg.Playground.UserPromptTemplate,
		Subject:            cfg.Playground.DefaultSubject,
		Temperature:        playground.DefaultTemperature,
		MaxTokens:          playground.DefaultMaxTokens,
		PresencePenalty:    playground.DefaultPenalty,
		FrequencyPenalty:   playground.DefaultPenalty,
	})
	handler := playgroundHandler.NewHandler(playground.NewGenerator(deps.AIService), options, cfg.App.Debug)
	guard := middleware.NewInFlightGuard()

	api := router.Group("/api/v1/playground")
	{
		api.GET("/options", handler.HandleOptions)
		api.POST("/preview", handler.HandlePreview)

		generate := []gin.HandlerFunc{}
		if cfg.RateLimit.Enabled {
			generate = append(generate, middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		// 先佔用 in-flight，被拒絕的請求不會留下 dedup 指紋
		generate = append(generate,
			guard.Middleware(),
			middleware.Deduplication(deps.DedupStore, cfg.Dedup.Window),
			handler.HandleGenerate,
		)
		api.POST("/generate", generate...)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.Dedup.Window),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
