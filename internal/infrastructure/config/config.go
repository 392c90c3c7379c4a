package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Playground PlaygroundConfig `mapstructure:"playground"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	Log        LogConfig        `mapstructure:"log"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env" validate:"required"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name" validate:"required"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// OpenAIConfig 遠端補全服務設定；APIKey 可為空，首次生成時才回報
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"` // 0 表示使用傳輸層預設
}

// PlaygroundConfig 介面提供的選項與預設值
type PlaygroundConfig struct {
	Models             []string `mapstructure:"models" validate:"required,min=1,dive,required"`
	DefaultModel       string   `mapstructure:"default_model" validate:"required"`
	SystemPrompt       string   `mapstructure:"system_prompt"`
	UserPromptTemplate string   `mapstructure:"user_prompt_template" validate:"required"`
	DefaultSubject     string   `mapstructure:"default_subject"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests" validate:"required_if=Enabled true,gte=0"`
	Window   time.Duration `mapstructure:"window" validate:"required_if=Enabled true,gte=0"`
}

// DedupConfig 重複提交防護設定
type DedupConfig struct {
	Window    time.Duration `mapstructure:"window" validate:"gte=0"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error fatal"`
	Mode  string `mapstructure:"mode" validate:"omitempty,oneof=concise verbose"`
	Dir   string `mapstructure:"dir"`
}

// LoadConfig 載入設定；.env 不存在時略過
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(viper.New())
}

// Load 以給定的 viper 實例解析設定
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	binds := map[string]string{
		"openai.api_key":           "OPENAI_API_KEY",
		"openai.base_url":          "OPENAI_BASE_URL",
		"openai.timeout":           "OPENAI_TIMEOUT",
		"playground.default_model": "OPENAI_MODEL",
		"server.port":              "PORT",
		"rate_limit.enabled":       "RATE_LIMIT_ENABLED",
		"rate_limit.requests":      "RATE_LIMIT_REQUESTS",
		"rate_limit.window":        "RATE_LIMIT_WINDOW",
		"dedup.window":             "DEDUP_WINDOW",
		"dedup.redis_addr":         "REDIS_ADDR",
		"log.level":                "LOG_LEVEL",
		"log.mode":                 "LOG_MODE",
		"log.dir":                  "LOG_DIR",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// HasAPIKey 是否已設定 API Key
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "prompt-playground")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// OpenAI 設定
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.timeout", "0s")

	// Playground 選項
	v.SetDefault("playground.models", []string{"gpt-3.5-turbo", "gpt-4", "gpt-4.1"})
	v.SetDefault("playground.default_model", "gpt-3.5-turbo")
	v.SetDefault("playground.system_prompt", "You are a creative marketing expert specializing in writing compelling product descriptions. Create engaging, informative, and persuasive descriptions that highlight key features and benefits.")
	v.SetDefault("playground.user_prompt_template", "Write a compelling product description for: {product}")
	v.SetDefault("playground.default_subject", "iPhone 15 Pro")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	// 重複提交
	v.SetDefault("dedup.window", "1s")
	v.SetDefault("dedup.redis_addr", "")

	// 日誌
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "")
	v.SetDefault("log.dir", "logs")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// 錯誤訊息使用 mapstructure 名稱
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return val
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	found := false
	for _, m := range config.Playground.Models {
		if m == config.Playground.DefaultModel {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default model %q is not in playground.models", config.Playground.DefaultModel)
	}

	return nil
}
