package llm

import (
	"ai-study-planner/internal/shared"
	"context"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Generation parameters shared by every provider.
const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)
