package provider

import (
	"context"
)

// Role 訊息角色
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request 表示發送到 AI 提供者的請求。
// 取樣參數一律送出（0 也是有效值）；Stop 為 nil 時不送出。
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	Stop             []string  `json:"stop,omitempty"`
}

// Usage 使用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 送出一次補全請求，不重試
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取預設模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}
