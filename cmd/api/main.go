package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prompt-playground/internal/api"
	"prompt-playground/internal/api/middleware"
	"prompt-playground/internal/core/ai/openai"
	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/core/ai/service"
	"prompt-playground/internal/infrastructure/config"
	"prompt-playground/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level: cfg.Log.Level,
		Mode:  cfg.Log.Mode,
		Dir:   cfg.Log.Dir,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openai_key", common.MaskSecret(cfg.OpenAI.APIKey)),
		zap.String("openai_base_url", cfg.OpenAI.BaseURL),
		zap.String("default_model", cfg.Playground.DefaultModel),
	)
	if !cfg.HasAPIKey() {
		common.LogWarn("OpenAI API key not found, generation is disabled until OPENAI_API_KEY is set")
	}

	// 客戶端於第一次生成時建立
	aiService := service.NewService(func() (provider.Provider, error) {
		client, err := openai.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	defer aiService.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var dedupStore middleware.DedupStore
	if cfg.Dedup.RedisAddr != "" {
		redisStore, err := middleware.NewRedisDedupStore(ctx, cfg.Dedup.RedisAddr)
		if err != nil {
			common.LogFatal("Failed to initialize dedup store", zap.Error(err))
		}
		defer redisStore.Close()
		dedupStore = redisStore
	} else {
		memStore := middleware.NewMemoryDedupStore()
		memStore.StartCleanup(ctx, 10*time.Minute, 10*cfg.Dedup.Window)
		dedupStore = memStore
	}

	router, err := api.SetupRouter(cfg, api.Dependencies{
		AIService:  aiService,
		DedupStore: dedupStore,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
