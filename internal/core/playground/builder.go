package playground

import (
	"errors"
	"strings"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/pkg/common"
)

// Prepared 建好的請求與顯示用的最終提示
type Prepared struct {
	Request      *provider.Request
	SystemPrompt string
	UserPrompt   string
}

// Build 由設定建立補全請求。
// 空白 subject 回傳 INVALID_INPUT，佔位符錯誤回傳 TEMPLATE_ERROR，兩者都不會送出請求。
func Build(cfg GenerationConfig) (*Prepared, error) {
	if strings.TrimSpace(cfg.Subject) == "" {
		return nil, common.ErrInvalidInput.Wrap(errors.New("please enter a product name"))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, common.ErrInvalidInput.Wrap(errors.New("please select a model"))
	}

	userPrompt, err := ResolvePrompt(cfg.UserPromptTemplate, cfg.Subject)
	if err != nil {
		return nil, err
	}

	cfg = cfg.Normalize()
	return &Prepared{
		Request: &provider.Request{
			Model:            cfg.Model,
			Messages:         BuildMessages(cfg.SystemPrompt, userPrompt),
			Temperature:      cfg.Temperature,
			MaxTokens:        cfg.MaxTokens,
			PresencePenalty:  cfg.PresencePenalty,
			FrequencyPenalty: cfg.FrequencyPenalty,
			Stop:             ParseStopSequences(cfg.StopSequencesRaw),
		},
		SystemPrompt: cfg.SystemPrompt,
		UserPrompt:   userPrompt,
	}, nil
}

// Preview 目前設定摘要與最終提示，不發出網路請求
type Preview struct {
	Model            string   `json:"model"`
	Product          string   `json:"product"`
	Temperature      float64  `json:"temperature"`
	MaxTokens        int      `json:"max_tokens"`
	PresencePenalty  float64  `json:"presence_penalty"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	StopSequences    string   `json:"stop_sequences"`
	Stop             []string `json:"stop"`
	Placeholders     []string `json:"placeholders"`
	SystemPrompt     string   `json:"system_prompt"`
	UserPrompt       string   `json:"user_prompt"`
}

// NewPreview 建立預覽；模板錯誤照常回傳，subject 可為空
func NewPreview(cfg GenerationConfig) (*Preview, error) {
	userPrompt, err := ResolvePrompt(cfg.UserPromptTemplate, cfg.Subject)
	if err != nil {
		return nil, err
	}

	cfg = cfg.Normalize()
	stopText := cfg.StopSequencesRaw
	if stopText == "" {
		stopText = "None"
	}
	return &Preview{
		Model:            cfg.Model,
		Product:          cfg.Subject,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		PresencePenalty:  cfg.PresencePenalty,
		FrequencyPenalty: cfg.FrequencyPenalty,
		StopSequences:    stopText,
		Stop:             ParseStopSequences(cfg.StopSequencesRaw),
		Placeholders:     Placeholders(cfg.UserPromptTemplate),
		SystemPrompt:     cfg.SystemPrompt,
		UserPrompt:       userPrompt,
	}, nil
}
