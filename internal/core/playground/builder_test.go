package playground_test

import (
	"errors"
	"math"
	"testing"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/core/playground"
	"prompt-playground/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() playground.GenerationConfig {
	return playground.GenerationConfig{
		Model:              "gpt-3.5-turbo",
		SystemPrompt:       "You are a creative marketing expert.",
		UserPromptTemplate: "Write a compelling product description for: {product}",
		Subject:            "iPhone 15 Pro",
		Temperature:        0.7,
		MaxTokens:          150,
		PresencePenalty:    0.0,
		FrequencyPenalty:   0.3,
		StopSequencesRaw:   "Limited,  time , , offer",
	}
}

func TestBuild(t *testing.T) {
	p, err := playground.Build(baseConfig())
	require.NoError(t, err)

	assert.Equal(t, "Write a compelling product description for: iPhone 15 Pro", p.UserPrompt)
	assert.Equal(t, "You are a creative marketing expert.", p.SystemPrompt)

	req := p.Request
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 150, req.MaxTokens)
	assert.Equal(t, 0.0, req.PresencePenalty)
	assert.Equal(t, 0.3, req.FrequencyPenalty)
	assert.Equal(t, []string{"Limited", "time", "offer"}, req.Stop)
	assert.Equal(t, []provider.Message{
		{Role: provider.RoleSystem, Content: "You are a creative marketing expert."},
		{Role: provider.RoleUser, Content: "Write a compelling product description for: iPhone 15 Pro"},
	}, req.Messages)
}

func TestBuild_BlankSubjectRejected(t *testing.T) {
	for _, subject := range []string{"", "   ", "\n"} {
		cfg := baseConfig()
		cfg.Subject = subject

		p, err := playground.Build(cfg)
		assert.Nil(t, p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidInput))
	}
}

func TestBuild_BlankSubjectCheckedBeforeTemplate(t *testing.T) {
	cfg := baseConfig()
	cfg.Subject = ""
	cfg.UserPromptTemplate = "{broken}"

	_, err := playground.Build(cfg)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestBuild_TemplateError(t *testing.T) {
	cfg := baseConfig()
	cfg.UserPromptTemplate = "Describe {prodct}"

	p, err := playground.Build(cfg)
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTemplate))
}

func TestBuild_BlankSystemPromptAndNoStops(t *testing.T) {
	cfg := baseConfig()
	cfg.SystemPrompt = "  "
	cfg.StopSequencesRaw = ""

	p, err := playground.Build(cfg)
	require.NoError(t, err)
	require.Len(t, p.Request.Messages, 1)
	assert.Equal(t, provider.RoleUser, p.Request.Messages[0].Role)
	assert.Nil(t, p.Request.Stop)
}

func TestBuild_NormalizesOutOfRangeValues(t *testing.T) {
	cfg := baseConfig()
	cfg.Temperature = 3
	cfg.MaxTokens = 10000
	cfg.PresencePenalty = -1
	cfg.FrequencyPenalty = math.NaN()

	p, err := playground.Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, playground.MaxTemperature, p.Request.Temperature)
	assert.Equal(t, 500, p.Request.MaxTokens)
	assert.Equal(t, 0.0, p.Request.PresencePenalty)
	assert.Equal(t, playground.DefaultPenalty, p.Request.FrequencyPenalty)
}

func TestNormalize_MaxTokensSnapsToAllowedSet(t *testing.T) {
	tests := map[int]int{
		-5:  50,
		0:   50,
		50:  50,
		74:  50,
		75:  50, // tie goes to the lower option
		76:  100,
		260: 250,
		350: 300,
		351: 400,
		450: 400,
		999: 500,
	}
	for in, want := range tests {
		cfg := playground.GenerationConfig{MaxTokens: in}.Normalize()
		assert.Equal(t, want, cfg.MaxTokens, "max tokens %d", in)
	}
}

func TestNormalize_KeepsInRangeValues(t *testing.T) {
	cfg := baseConfig()
	assert.Equal(t, cfg, cfg.Normalize())
}

func TestNewPreview(t *testing.T) {
	cfg := baseConfig()
	cfg.StopSequencesRaw = ""

	preview, err := playground.NewPreview(cfg)
	require.NoError(t, err)
	assert.Equal(t, "None", preview.StopSequences)
	assert.Nil(t, preview.Stop)
	assert.Equal(t, "iPhone 15 Pro", preview.Product)
	assert.Equal(t, []string{"product"}, preview.Placeholders)
	assert.Equal(t, "Write a compelling product description for: iPhone 15 Pro", preview.UserPrompt)
}

func TestNewPreview_TemplateError(t *testing.T) {
	cfg := baseConfig()
	cfg.UserPromptTemplate = "{tone} copy"

	_, err := playground.NewPreview(cfg)
	assert.True(t, errors.Is(err, common.ErrTemplate))
}

func TestNewOptions(t *testing.T) {
	opts := playground.NewOptions([]string{"gpt-4"}, playground.Defaults{Model: "gpt-4"})
	require.Len(t, opts.Temperatures, 13)
	assert.Equal(t, 0.0, opts.Temperatures[0])
	assert.Equal(t, 0.7, opts.Temperatures[7])
	assert.Equal(t, 1.2, opts.Temperatures[12])
	require.Len(t, opts.PresencePenalties, 16)
	assert.Equal(t, 1.5, opts.PresencePenalties[15])
	assert.Equal(t, opts.PresencePenalties, opts.FrequencyPenalties)
	assert.Equal(t, []int{50, 100, 150, 200, 250, 300, 400, 500}, opts.MaxTokens)
	assert.Equal(t, "gpt-4", opts.Defaults.Config().Model)
}
