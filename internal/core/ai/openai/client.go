package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/infrastructure/config"
	"prompt-playground/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const completionsPath = "/chat/completions"

// ErrMalformedResponse 無法解析的回應
var ErrMalformedResponse = errors.New("malformed completion response")

// Client OpenAI Chat Completions 客戶端
type Client struct {
	client *resty.Client
	model  string
}

var _ provider.Provider = (*Client)(nil)

// APIError 表示服務端回傳的非 2xx 錯誤
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// errorEnvelope 服務端錯誤格式
type errorEnvelope struct {
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// NewClient 創建客戶端；憑證只在此讀取一次，缺少時回傳設定錯誤
func NewClient(cfg *config.Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.OpenAI.APIKey)
	if apiKey == "" {
		return nil, common.ErrConfiguration.Wrap(errors.New("OpenAI API key not found, set OPENAI_API_KEY in the environment or .env file"))
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.OpenAI.BaseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("%s/%s", cfg.App.Name, cfg.App.Version))
	if cfg.OpenAI.Timeout > 0 {
		client.SetTimeout(cfg.OpenAI.Timeout)
	}

	return &Client{
		client: client,
		model:  cfg.Playground.DefaultModel,
	}, nil
}

// Generate 送出補全請求並回傳第一個 choice 的內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if req == nil {
		return nil, errors.New("nil completion request")
	}
	if req.Model == "" {
		clone := *req
		clone.Model = c.model
		req = &clone
	}

	common.LogInfo("Sending request to OpenAI",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("stop_sequences", len(req.Stop)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(completionsPath)
	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", req.Model),
		)
		return nil, err
	}

	body := resp.Body()
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiErr := parseAPIError(resp.StatusCode(), body)
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", req.Model),
			zap.String("response", common.Truncate(string(body), 512)),
		)
		return nil, apiErr
	}

	var parsed completionResponse
	if err := common.ParseJSONBytes(body, &parsed); err != nil {
		common.LogError("Failed to parse AI service response",
			zap.Error(err),
			zap.String("model", req.Model),
			zap.String("response", common.Truncate(string(body), 512)),
		)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(parsed.Choices) == 0 {
		common.LogError("Empty choices in AI service response",
			zap.String("model", req.Model),
		)
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	content := ""
	if parsed.Choices[0].Message.Content != nil {
		content = *parsed.Choices[0].Message.Content
	}
	model := parsed.Model
	if model == "" {
		model = req.Model
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", parsed.Usage.TotalTokens),
	)

	return &provider.Response{
		Content: content,
		Model:   model,
		Usage:   parsed.Usage,
	}, nil
}

// parseAPIError 從錯誤回應取出服務端訊息，格式不符時使用原始內容
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env errorEnvelope
	if err := common.ParseJSONBytes(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		if env.Error.Code != nil {
			apiErr.Code = fmt.Sprintf("%v", env.Error.Code)
		}
		return apiErr
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		text = fmt.Sprintf("unexpected status %d", status)
	}
	apiErr.Message = common.Truncate(text, 512)
	return apiErr
}

// GetModel 預設模型
func (c *Client) GetModel() string {
	return c.model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
