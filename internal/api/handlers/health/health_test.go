package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prompt-playground/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if cfg != nil {
			c.Set("config", cfg)
		}
		c.Next()
	})
	r.GET("/health", HealthCheck)
	r.GET("/ready", ReadinessCheck)
	r.GET("/live", LivenessCheck)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Version = "1.2.3"
	r := newRouter(cfg)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.False(t, resp.APIKeyConfigured)
	assert.Contains(t, resp.Runtime, "goroutines")
}

func TestReadinessCheck(t *testing.T) {
	cfg := &config.Config{}
	r := newRouter(cfg)
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/ready").Code)

	cfg.OpenAI.APIKey = "sk-test"
	assert.Equal(t, http.StatusOK, get(r, "/ready").Code)
}

func TestMissingConfig(t *testing.T) {
	r := newRouter(nil)
	assert.Equal(t, http.StatusInternalServerError, get(r, "/health").Code)
	assert.Equal(t, http.StatusInternalServerError, get(r, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(r, "/live").Code)
}
