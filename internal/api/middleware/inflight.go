package middleware

import (
	"net/http"
	"sync"

	"prompt-playground/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InFlightGuard 每個客戶端同時只允許一個進行中的請求
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlightGuard 創建防護
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[string]struct{})}
}

// TryAcquire 佔用 key，已被佔用時回傳 false
func (g *InFlightGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

// Release 釋放 key
func (g *InFlightGuard) Release(key string) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}

// Middleware 以客戶端 IP 為 key，忙碌時回傳 409
func (g *InFlightGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !g.TryAcquire(key) {
			common.LogInfo("Generation already in progress", zap.String("ip", key))
			c.AbortWithStatusJSON(http.StatusConflict, common.ErrConflict.ToErrorResponse(false))
			return
		}
		defer g.Release(key)

		c.Next()
	}
}
