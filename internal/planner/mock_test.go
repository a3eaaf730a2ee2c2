package planner

import (
	"context"
	"fmt"
	"strings"

	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/shared"
)

// MockTextGenerator records prompts and answers from a queue of responses.
type MockTextGenerator struct {
	Prompts   []string
	Responses []string
	Errors    []error
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	i := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)
	if i < len(m.Errors) && m.Errors[i] != nil {
		return llm.ContentResponse{}, m.Errors[i]
	}
	content := sevenDayPlan
	if i < len(m.Responses) {
		content = m.Responses[i]
	}
	return llm.ContentResponse{
		Content: content,
		Usage:   shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150, Model: "mock"},
	}, nil
}

var sevenDayPlan = func() string {
	var sb strings.Builder
	for d := 1; d <= 7; d++ {
		fmt.Fprintf(&sb, "Day %d: You've got this! Study topic %d for 2 hours.\n", d, d)
	}
	return sb.String()
}()
