package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// CallMeta holds operational metadata for one completion call.
type CallMeta struct {
	Operation string
	Course    string
	Usage     TokenUsage
	Latency   time.Duration
	Success   bool
}
