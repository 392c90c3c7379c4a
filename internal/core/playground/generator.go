package playground

import (
	"context"
	"time"

	"prompt-playground/internal/core/ai/service"
	"prompt-playground/internal/pkg/common"

	"go.uber.org/zap"
)

// Generation 一次生成的結果
type Generation struct {
	ID           string        `json:"id"`
	Product      string        `json:"product"`
	Model        string        `json:"model"`
	SystemPrompt string        `json:"system_prompt"`
	UserPrompt   string        `json:"user_prompt"`
	Response     string        `json:"response"`
	Failed       bool          `json:"failed"`
	Duration     time.Duration `json:"-"`
}

// Generator 串接建構與呼叫
type Generator struct {
	ai *service.Service
}

// NewGenerator 創建生成器
func NewGenerator(ai *service.Service) *Generator {
	return &Generator{ai: ai}
}

// Generate 執行一次同步生成。
// 輸入、模板、設定錯誤在送出前回傳；遠端錯誤轉為 "Error: ..." 文字並標記 Failed。
func (g *Generator) Generate(ctx context.Context, cfg GenerationConfig) (*Generation, error) {
	prepared, err := Build(cfg)
	if err != nil {
		common.LogWarn("Generation rejected before request",
			zap.Error(err),
			zap.String("model", cfg.Model),
		)
		return nil, err
	}

	if _, err := g.ai.Acquire(); err != nil {
		return nil, err
	}

	start := time.Now()
	text := g.ai.Invoke(ctx, prepared.Request)

	return &Generation{
		ID:           common.GenerateUUID(),
		Product:      cfg.Subject,
		Model:        prepared.Request.Model,
		SystemPrompt: prepared.SystemPrompt,
		UserPrompt:   prepared.UserPrompt,
		Response:     text,
		Failed:       service.IsErrorResult(text),
		Duration:     time.Since(start),
	}, nil
}
