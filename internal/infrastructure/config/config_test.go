package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 清除會影響設定的環境變數
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_TIMEOUT", "OPENAI_MODEL",
		"PORT", "RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"DEDUP_WINDOW", "REDIS_ADDR", "LOG_LEVEL", "LOG_MODE", "LOG_DIR",
		"APP_APP_ENV", "APP_SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.OpenAI.Timeout)
	assert.False(t, cfg.HasAPIKey())

	assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4", "gpt-4.1"}, cfg.Playground.Models)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Playground.DefaultModel)
	assert.Equal(t, "Write a compelling product description for: {product}", cfg.Playground.UserPromptTemplate)
	assert.Equal(t, "iPhone 15 Pro", cfg.Playground.DefaultSubject)
	assert.Contains(t, cfg.Playground.SystemPrompt, "creative marketing expert")

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Second, cfg.Dedup.Window)
	assert.Empty(t, cfg.Dedup.RedisAddr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("OPENAI_TIMEOUT", "45s")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("DEDUP_WINDOW", "0s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_APP_ENV", "production")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "gpt-4", cfg.Playground.DefaultModel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Dedup.Window)
	assert.Equal(t, "localhost:6379", cfg.Dedup.RedisAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "production", cfg.App.Env)
}

func TestLoad_UnknownDefaultModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-unknown")

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt-unknown")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"port":      {"PORT", "70000"},
		"base url":  {"OPENAI_BASE_URL", "not a url"},
		"log level": {"LOG_LEVEL", "loud"},
		"timeout":   {"OPENAI_TIMEOUT", "-1s"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestValidateConfig_UsesConfigKeyNames(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	cfg.Server.Port = 0
	err = validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
