package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrorPrefix 失敗結果的固定前綴
const ErrorPrefix = "Error: "

// Factory 建立提供者；只會被呼叫一次
type Factory func() (provider.Provider, error)

// Service AI 補全服務：延遲建立並快取客戶端，將結果正規化為單一字串
type Service struct {
	factory Factory

	once   sync.Once
	client provider.Provider
	err    error

	// mu 保護 client 寫入與 closed
	mu     sync.Mutex
	closed bool
}

// NewService 創建 AI 服務
func NewService(factory Factory) *Service {
	return &Service{factory: factory}
}

// NewServiceWithProvider 使用現成的提供者
func NewServiceWithProvider(p provider.Provider) *Service {
	return NewService(func() (provider.Provider, error) { return p, nil })
}

// Acquire 取得快取的客戶端；首次呼叫時建立，建立失敗的錯誤同樣被快取
func (s *Service) Acquire() (provider.Provider, error) {
	s.once.Do(func() {
		client, err := s.create()

		s.mu.Lock()
		defer s.mu.Unlock()
		if err == nil && s.closed {
			// Close 在建立期間被呼叫
			_ = client.Close()
			client, err = nil, common.ErrConfiguration.Wrap(errors.New("completion service is closed"))
		}
		s.client, s.err = client, err
	})
	return s.client, s.err
}

func (s *Service) create() (provider.Provider, error) {
	if s.factory == nil {
		return nil, common.ErrConfiguration.Wrap(errors.New("no completion provider configured"))
	}
	client, err := s.factory()
	if err == nil && client == nil {
		err = errors.New("completion provider factory returned nil")
	}
	if err != nil {
		if _, ok := common.AsCustomError(err); !ok {
			err = common.ErrConfiguration.Wrap(err)
		}
		common.LogError("Failed to initialize completion client", zap.Error(err))
		return nil, err
	}
	common.LogInfo("Completion client initialized", zap.String("model", client.GetModel()))
	return client, nil
}

// Invoke 送出請求，永遠回傳可顯示的文字：成功為模型輸出，失敗為 "Error: <訊息>"
func (s *Service) Invoke(ctx context.Context, req *provider.Request) string {
	start := time.Now()
	model := ""
	if req != nil {
		model = req.Model
	}

	text, err := s.invoke(ctx, req)
	common.LogAICall(model, time.Since(start), err, requestIDFrom(ctx))
	if err != nil {
		return FormatError(err)
	}
	return text
}

func (s *Service) invoke(ctx context.Context, req *provider.Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Completion provider panicked", zap.Any("panic", r))
			err = errors.New("completion provider failed unexpectedly")
		}
	}()

	client, err := s.Acquire()
	if err != nil {
		return "", err
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("empty completion response")
	}
	return resp.Content, nil
}

// Close 關閉已建立的客戶端；之後建立的客戶端會立即關閉
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	client := s.client
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Close()
}

// FormatError 將錯誤轉為 "Error: <訊息>"
func FormatError(err error) string {
	if err == nil {
		return ErrorPrefix + "unknown error"
	}
	return ErrorPrefix + err.Error()
}

// IsErrorResult 判斷結果是否為失敗
func IsErrorResult(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

type requestIDKey struct{}

// WithRequestID 在 context 中攜帶請求 ID（日誌用）
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
