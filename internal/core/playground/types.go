package playground

import (
	"math"
)

// GenerationConfig 使用者選定的生成設定，每次操作重新建立
type GenerationConfig struct {
	Model              string
	SystemPrompt       string
	UserPromptTemplate string
	Subject            string
	Temperature        float64
	MaxTokens          int
	PresencePenalty    float64
	FrequencyPenalty   float64
	StopSequencesRaw   string
}

// 取樣參數範圍與預設值
const (
	MinTemperature     = 0.0
	MaxTemperature     = 1.2
	DefaultTemperature = 0.7

	MinPenalty     = 0.0
	MaxPenalty     = 1.5
	DefaultPenalty = 0.0

	DefaultMaxTokens = 150

	// SubjectPlaceholder 模板中唯一支援的佔位符名稱
	SubjectPlaceholder = "product"
)

// MaxTokenOptions 可選的最大 token 數
var MaxTokenOptions = []int{50, 100, 150, 200, 250, 300, 400, 500}

// Options 提供給介面層的選項集合
type Options struct {
	Models             []string  `json:"models"`
	Temperatures       []float64 `json:"temperatures"`
	MaxTokens          []int     `json:"max_tokens"`
	PresencePenalties  []float64 `json:"presence_penalties"`
	FrequencyPenalties []float64 `json:"frequency_penalties"`
	Defaults           Defaults  `json:"defaults"`
}

// Defaults 介面欄位的預設值
type Defaults struct {
	Model              string  `json:"model"`
	SystemPrompt       string  `json:"system_prompt"`
	UserPromptTemplate string  `json:"user_prompt_template"`
	Subject            string  `json:"product"`
	Temperature        float64 `json:"temperature"`
	MaxTokens          int     `json:"max_tokens"`
	PresencePenalty    float64 `json:"presence_penalty"`
	FrequencyPenalty   float64 `json:"frequency_penalty"`
	StopSequences      string  `json:"stop_sequences"`
}

// NewOptions 依模型清單與預設提示建立選項
func NewOptions(models []string, defaults Defaults) Options {
	penalties := steps(MinPenalty, MaxPenalty)
	tokens := make([]int, len(MaxTokenOptions))
	copy(tokens, MaxTokenOptions)
	return Options{
		Models:             append([]string(nil), models...),
		Temperatures:       steps(MinTemperature, MaxTemperature),
		MaxTokens:          tokens,
		PresencePenalties:  penalties,
		FrequencyPenalties: append([]float64(nil), penalties...),
		Defaults:           defaults,
	}
}

// Config 以預設值建立設定
func (d Defaults) Config() GenerationConfig {
	return GenerationConfig{
		Model:              d.Model,
		SystemPrompt:       d.SystemPrompt,
		UserPromptTemplate: d.UserPromptTemplate,
		Subject:            d.Subject,
		Temperature:        d.Temperature,
		MaxTokens:          d.MaxTokens,
		PresencePenalty:    d.PresencePenalty,
		FrequencyPenalty:   d.FrequencyPenalty,
		StopSequencesRaw:   d.StopSequences,
	}
}

// steps 以 0.1 為間隔產生 [min, max]
func steps(min, max float64) []float64 {
	n := int(math.Round((max-min)*10)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, math.Round((min+float64(i)*0.1)*10)/10)
	}
	return out
}

// Normalize 將數值欄位收斂到允許範圍，不會 panic
func (c GenerationConfig) Normalize() GenerationConfig {
	c.Temperature = clamp(c.Temperature, MinTemperature, MaxTemperature, DefaultTemperature)
	c.PresencePenalty = clamp(c.PresencePenalty, MinPenalty, MaxPenalty, DefaultPenalty)
	c.FrequencyPenalty = clamp(c.FrequencyPenalty, MinPenalty, MaxPenalty, DefaultPenalty)
	c.MaxTokens = nearestMaxTokens(c.MaxTokens)
	return c
}

func clamp(v, min, max, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < min:
		return min
	case v > max:
		return max
	}
	return v
}

// nearestMaxTokens 取最接近的允許值，距離相同時取較小者
func nearestMaxTokens(v int) int {
	if v <= MaxTokenOptions[0] {
		return MaxTokenOptions[0]
	}
	if last := MaxTokenOptions[len(MaxTokenOptions)-1]; v >= last {
		return last
	}
	best := MaxTokenOptions[0]
	bestDist := absInt(v - best)
	for _, opt := range MaxTokenOptions[1:] {
		if d := absInt(v - opt); d < bestDist {
			best, bestDist = opt, d
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
