package playground

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"prompt-playground/internal/core/ai/service"
	core "prompt-playground/internal/core/playground"
	"prompt-playground/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerationRequest 介面送來的原始欄位；未提供的欄位使用預設值
type GenerationRequest struct {
	Model              string   `json:"model"`
	SystemPrompt       *string  `json:"system_prompt"`
	UserPromptTemplate *string  `json:"user_prompt_template"`
	Product            *string  `json:"product"`
	Temperature        *float64 `json:"temperature" binding:"omitempty,gte=0,lte=1.2"`
	MaxTokens          *int     `json:"max_tokens" binding:"omitempty,oneof=50 100 150 200 250 300 400 500"`
	PresencePenalty    *float64 `json:"presence_penalty" binding:"omitempty,gte=0,lte=1.5"`
	FrequencyPenalty   *float64 `json:"frequency_penalty" binding:"omitempty,gte=0,lte=1.5"`
	StopSequences      *string  `json:"stop_sequences"`
}

// GenerationResponse 生成結果
type GenerationResponse struct {
	ID           string `json:"id"`
	Product      string `json:"product"`
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Response     string `json:"response"`
	Failed       bool   `json:"failed"`
	Duration     string `json:"duration"`
}

// Handler playground 處理程序
type Handler struct {
	generator *core.Generator
	options   core.Options
	debug     bool
}

// NewHandler 創建處理程序
func NewHandler(generator *core.Generator, options core.Options, debug bool) *Handler {
	return &Handler{
		generator: generator,
		options:   options,
		debug:     debug,
	}
}

// HandleOptions 回傳可選項與預設值
func (h *Handler) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.options)
}

// HandlePreview 回傳設定摘要與最終提示，不呼叫模型
func (h *Handler) HandlePreview(c *gin.Context) {
	cfg, ok := h.bind(c)
	if !ok {
		return
	}

	preview, err := core.NewPreview(cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// HandleGenerate 執行一次生成
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := requestid.Get(c)
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	cfg, ok := h.bind(c)
	if !ok {
		return
	}

	common.LogInfo("開始處理生成請求",
		zap.String("request_id", requestID),
		zap.String("model", cfg.Model),
		zap.String("product", cfg.Subject),
		zap.Float64("temperature", cfg.Temperature),
		zap.Int("max_tokens", cfg.MaxTokens),
	)

	ctx := service.WithRequestID(c.Request.Context(), requestID)
	gen, err := h.generator.Generate(ctx, cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}

	common.LogInfo("生成完成",
		zap.String("request_id", requestID),
		zap.String("generation_id", gen.ID),
		zap.Bool("failed", gen.Failed),
		zap.Duration("duration", gen.Duration),
	)

	c.JSON(http.StatusOK, GenerationResponse{
		ID:           gen.ID,
		Product:      gen.Product,
		Model:        gen.Model,
		SystemPrompt: gen.SystemPrompt,
		UserPrompt:   gen.UserPrompt,
		Response:     gen.Response,
		Failed:       gen.Failed,
		Duration:     gen.Duration.String(),
	})
}

// bind 解析請求並套用預設值；失敗時已寫入回應
func (h *Handler) bind(c *gin.Context) (core.GenerationConfig, bool) {
	var req GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		h.writeError(c, common.ErrInvalidRequest.Wrap(err))
		return core.GenerationConfig{}, false
	}

	cfg := h.toConfig(req)
	if !h.allowedModel(cfg.Model) {
		h.writeError(c, common.ErrInvalidInput.Wrap(&unsupportedModelError{model: cfg.Model}))
		return core.GenerationConfig{}, false
	}
	return cfg, true
}

func (h *Handler) toConfig(req GenerationRequest) core.GenerationConfig {
	cfg := h.options.Defaults.Config()
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg.Model = m
	}
	if req.SystemPrompt != nil {
		cfg.SystemPrompt = *req.SystemPrompt
	}
	if req.UserPromptTemplate != nil {
		cfg.UserPromptTemplate = *req.UserPromptTemplate
	}
	if req.Product != nil {
		cfg.Subject = *req.Product
	}
	if req.Temperature != nil {
		cfg.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		cfg.MaxTokens = *req.MaxTokens
	}
	if req.PresencePenalty != nil {
		cfg.PresencePenalty = *req.PresencePenalty
	}
	if req.FrequencyPenalty != nil {
		cfg.FrequencyPenalty = *req.FrequencyPenalty
	}
	if req.StopSequences != nil {
		cfg.StopSequencesRaw = *req.StopSequences
	}
	return cfg
}

func (h *Handler) allowedModel(model string) bool {
	for _, m := range h.options.Models {
		if m == model {
			return true
		}
	}
	return false
}

type unsupportedModelError struct {
	model string
}

func (e *unsupportedModelError) Error() string {
	return "unsupported model: " + e.model
}

// writeError 依 CustomError 對應狀態碼
func (h *Handler) writeError(c *gin.Context, err error) {
	ce, ok := common.AsCustomError(err)
	if !ok {
		ce = common.ErrInternalError.Wrap(err)
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("Generation failed before request",
			zap.Error(err),
			zap.String("code", ce.Code),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.ToErrorResponse(h.debug))
}
