// Package llm provides chat completion clients for OpenAI-compatible and
// Anthropic endpoints.
package llm

import (
	"context"
)

// LLMClient defines the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends a single-turn prompt and returns the reply text
	// with usage stats. maxTokens bounds the reply length.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64, maxTokens int) (*GenerateResponseResult, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// GenerateResponseResult holds a completion reply and its token usage.
type GenerateResponseResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Ensure clients implement LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
)
