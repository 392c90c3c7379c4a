package provider

import (
	"context"
	"sync"
)

// MockResponse 預設回應
type MockResponse struct {
	Content string
	Err     error
}

// MockProvider 測試替身：依序回傳預設回應並記錄請求，用完後重複最後一個
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	idx       int
	closed    bool
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider 創建測試替身
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate 實作 Provider
func (m *MockProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if req != nil {
		m.calls = append(m.calls, *req)
	}

	if len(m.responses) == 0 {
		return &Response{Model: "mock"}, nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Model: "mock"}, nil
}

// Calls 回傳收到的請求副本
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Closed 是否已關閉
func (m *MockProvider) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetModel 實作 Provider
func (m *MockProvider) GetModel() string {
	return "mock"
}

// Close 實作 Provider
func (m *MockProvider) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
