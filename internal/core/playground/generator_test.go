package playground_test

import (
	"context"
	"errors"
	"testing"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/core/ai/service"
	"prompt-playground/internal/core/playground"
	"prompt-playground/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Success(t *testing.T) {
	mock := provider.NewMockProvider(provider.MockResponse{Content: "Great phone."})
	gen := playground.NewGenerator(service.NewServiceWithProvider(mock))

	result, err := gen.Generate(context.Background(), baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "Great phone.", result.Response)
	assert.False(t, result.Failed)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "iPhone 15 Pro", result.Product)
	assert.Equal(t, "gpt-3.5-turbo", result.Model)
	assert.Equal(t, "Write a compelling product description for: iPhone 15 Pro", result.UserPrompt)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"Limited", "time", "offer"}, calls[0].Stop)
	assert.Equal(t, []provider.Role{provider.RoleSystem, provider.RoleUser}, roles(calls[0].Messages))
}

func TestGenerator_RemoteErrorBecomesText(t *testing.T) {
	mock := provider.NewMockProvider(provider.MockResponse{Err: errors.New("timeout")})
	gen := playground.NewGenerator(service.NewServiceWithProvider(mock))

	result, err := gen.Generate(context.Background(), baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "Error: timeout", result.Response)
	assert.True(t, result.Failed)
}

func TestGenerator_BlankSubjectSendsNothing(t *testing.T) {
	mock := provider.NewMockProvider(provider.MockResponse{Content: "unused"})
	gen := playground.NewGenerator(service.NewServiceWithProvider(mock))

	cfg := baseConfig()
	cfg.Subject = "  "
	result, err := gen.Generate(context.Background(), cfg)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Empty(t, mock.Calls())
}

func TestGenerator_TemplateErrorSendsNothing(t *testing.T) {
	mock := provider.NewMockProvider(provider.MockResponse{Content: "unused"})
	gen := playground.NewGenerator(service.NewServiceWithProvider(mock))

	cfg := baseConfig()
	cfg.UserPromptTemplate = "Describe {item}"
	_, err := gen.Generate(context.Background(), cfg)
	assert.True(t, errors.Is(err, common.ErrTemplate))
	assert.Empty(t, mock.Calls())
}

func TestGenerator_MissingCredentialIsConfigError(t *testing.T) {
	factoryCalls := 0
	svc := service.NewService(func() (provider.Provider, error) {
		factoryCalls++
		return nil, common.ErrConfiguration.Wrap(errors.New("OpenAI API key not found"))
	})
	gen := playground.NewGenerator(svc)

	for i := 0; i < 2; i++ {
		result, err := gen.Generate(context.Background(), baseConfig())
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrConfiguration))
		assert.Contains(t, err.Error(), "OpenAI API key not found")
	}
	assert.Equal(t, 1, factoryCalls)
}

func TestGenerator_EmptyCompletionIsNotFailure(t *testing.T) {
	mock := provider.NewMockProvider(provider.MockResponse{Content: ""})
	gen := playground.NewGenerator(service.NewServiceWithProvider(mock))

	result, err := gen.Generate(context.Background(), baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "", result.Response)
	assert.False(t, result.Failed)
}
