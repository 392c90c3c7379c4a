package health

import (
	"net/http"
	"runtime"
	"time"

	"prompt-playground/internal/infrastructure/config"
	"prompt-playground/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status           string                 `json:"status"`
	Timestamp        time.Time              `json:"timestamp"`
	Version          string                 `json:"version"`
	APIKeyConfigured bool                   `json:"api_key_configured"`
	Runtime          map[string]interface{} `json:"runtime"`
}

// configFrom 從 context 取得設定
func configFrom(c *gin.Context) (*config.Config, bool) {
	v, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		return nil, false
	}
	cfg, ok := v.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		return nil, false
	}
	return cfg, true
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, ok := configFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, common.ErrInternalError.ToErrorResponse(false))
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:           "ok",
		Timestamp:        time.Now(),
		Version:          cfg.App.Version,
		APIKeyConfigured: cfg.HasAPIKey(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：未設定 API Key 時無法生成
func ReadinessCheck(c *gin.Context) {
	cfg, ok := configFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, common.ErrInternalError.ToErrorResponse(false))
		return
	}
	if !cfg.HasAPIKey() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "OpenAI API key not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
