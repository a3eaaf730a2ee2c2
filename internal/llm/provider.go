package llm

import (
	"context"

	"ai-study-planner/internal/config"
)

// NewFromConfig builds the TextGenerator selected by LLM_PROVIDER.
// The returned Closer must be closed by the caller.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, Closer, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
	return NewGroqClient(cfg), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
