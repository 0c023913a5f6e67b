package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

// MockLLM answers deterministically. Used in local mode and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	if convCtx.Purpose == domain.PurposeWritingPrompt {
		return `"What is one small thing that made you feel safe this week?"`, nil
	}
	return fmt.Sprintf("I hear you. You said %q. How does that make you feel?", prompt), nil
}
