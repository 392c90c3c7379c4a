package playground

import (
	"strings"

	"prompt-playground/internal/core/ai/provider"
)

// BuildMessages 建立訊息序列：system（非空白時）在前，接著恰好一則 user
func BuildMessages(systemPrompt, userPrompt string) []provider.Message {
	messages := make([]provider.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: systemPrompt})
	}
	return append(messages, provider.Message{Role: provider.RoleUser, Content: userPrompt})
}
