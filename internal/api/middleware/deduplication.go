package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"prompt-playground/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DedupStore 記錄請求指紋；window 內第一次出現回傳 true
type DedupStore interface {
	FirstSeen(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
}

// MemoryDedupStore 單機記憶體版本
type MemoryDedupStore struct {
	mu       sync.Mutex
	requests map[string]time.Time
	now      func() time.Time
}

// NewMemoryDedupStore 創建記憶體指紋表
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// FirstSeen 實作 DedupStore
func (s *MemoryDedupStore) FirstSeen(_ context.Context, fingerprint string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.requests[fingerprint]; ok && now.Sub(last) <= window {
		return false, nil
	}
	s.requests[fingerprint] = now
	return true, nil
}

// Cleanup 移除超過 maxAge 的指紋
func (s *MemoryDedupStore) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, t := range s.requests {
		if now.Sub(t) > maxAge {
			delete(s.requests, k)
			removed++
		}
	}
	return removed
}

// StartCleanup 定期清理，ctx 結束時停止
func (s *MemoryDedupStore) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(maxAge); n > 0 {
					common.LogDebug("Dedup fingerprints cleaned", zap.Int("count", n))
				}
			}
		}
	}()
}

// RedisDedupStore 多實例共享的指紋表（SETNX + TTL）
type RedisDedupStore struct {
	client *redis.Client
	prefix string
}

// NewRedisDedupStore 連線 Redis 並確認可用
func NewRedisDedupStore(ctx context.Context, addr string) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisDedupStoreWithClient(client), nil
}

// NewRedisDedupStoreWithClient 使用既有的 Redis 客戶端
func NewRedisDedupStoreWithClient(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client, prefix: "playground:dedup:"}
}

// Key 指紋對應的 Redis 鍵
func (s *RedisDedupStore) Key(fingerprint string) string {
	return s.prefix + fingerprint
}

// FirstSeen 實作 DedupStore
func (s *RedisDedupStore) FirstSeen(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.Key(fingerprint), time.Now().UnixNano(), window).Result()
}

// Close 關閉連線
func (s *RedisDedupStore) Close() error {
	return s.client.Close()
}

// Fingerprint 由方法、路徑、客戶端與請求體計算指紋
func Fingerprint(method, path, client string, body []byte) string {
	hash := sha256.Sum256(body)
	return method + ":" + path + ":" + client + ":" + hex.EncodeToString(hash[:])
}

// Deduplication 拒絕 window 內內容相同的重複 POST
func Deduplication(store DedupStore, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || window <= 0 {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrInvalidRequest.Wrap(err).ToErrorResponse(false))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		fingerprint := Fingerprint(c.Request.Method, c.Request.URL.Path, c.ClientIP(), body)
		first, err := store.FirstSeen(c.Request.Context(), fingerprint, window)
		if err != nil {
			// 指紋表不可用時放行
			common.LogWarn("Dedup store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !first {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.ToErrorResponse(false))
			return
		}

		c.Next()
	}
}
