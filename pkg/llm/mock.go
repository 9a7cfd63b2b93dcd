package llm

import (
	"context"
)

// MockCall records one GenerateResponse invocation.
type MockCall struct {
	Prompt        string
	SystemMessage string
	Temperature   float64
	MaxTokens     int
	TicketID      int64 // 0 when the context carries none
}

// MockLLMClient is a configurable LLMClient for tests. Without a
// GenerateResponseFunc every call succeeds with empty content.
type MockLLMClient struct {
	GenerateResponseFunc func(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (*GenerateResponseResult, error)

	Model    string
	Endpoint string

	Calls []MockCall
}

func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// GenerateResponse implements LLMClient.
func (m *MockLLMClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (*GenerateResponseResult, error) {
	ticketID, _ := GetTicketID(ctx)
	m.Calls = append(m.Calls, MockCall{
		Prompt:        prompt,
		SystemMessage: systemMessage,
		Temperature:   temperature,
		MaxTokens:     maxTokens,
		TicketID:      ticketID,
	})
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, systemMessage, temperature, maxTokens)
	}
	return &GenerateResponseResult{}, nil
}

// Prompts returns the prompts sent so far, in call order.
func (m *MockLLMClient) Prompts() []string {
	prompts := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		prompts[i] = c.Prompt
	}
	return prompts
}

// GetModel implements LLMClient.
func (m *MockLLMClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements LLMClient.
func (m *MockLLMClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

var _ LLMClient = (*MockLLMClient)(nil)
