package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
	"github.com/ekaya-inc/ticket-insights/pkg/logging"
)

// DefaultOpenAIEndpoint is used when no base URL is configured.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1"

// requestIDHeader carries the run id so provider-side logs can be correlated.
const requestIDHeader = "X-Request-Id"

// Client provides access to OpenAI-compatible LLM endpoints.
type Client struct {
	client   *openai.Client
	endpoint string
	model    string
	logger   *zap.Logger
}

// Config holds configuration for creating an LLM client.
type Config struct {
	Endpoint string        // Base URL, e.g., "https://api.openai.com/v1"
	Model    string        // Model name, e.g., "gpt-4o-mini"
	APIKey   string        // Optional for local endpoints
	Timeout  time.Duration // Per-request HTTP timeout; zero means none
}

// NewClient creates a new OpenAI-compatible LLM client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	clientConfig.HTTPClient = newHTTPClient(cfg.Timeout)

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		logger:   logger.Named("llm"),
	}, nil
}

// GenerateResponse generates a chat completion response with usage stats.
// An empty systemMessage sends only the user message.
func (c *Client) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	temperature float64,
	maxTokens int,
) (*GenerateResponseResult, error) {
	var messages []openai.ChatCompletionMessage
	if systemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemMessage})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	logger := c.logger.With(contextFields(ctx)...)
	logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature),
		zap.Int("max_tokens", maxTokens))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		llmErr := c.parseError(err)
		logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error_type", string(llmErr.Type)),
			zap.Bool("retryable", llmErr.Retryable),
			zap.String("error", logging.SanitizeError(err)))
		return nil, llmErr
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", apperrors.ErrEmptyResponse)
	}

	content := resp.Choices[0].Message.Content
	elapsed := time.Since(start)

	logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", elapsed))

	return &GenerateResponseResult{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// parseError categorizes OpenAI API errors using the structured Error type.
func (c *Client) parseError(err error) *Error {
	llmErr := ClassifyError(err)
	if llmErr.Model == "" {
		llmErr.Model = c.model
	}
	if llmErr.Endpoint == "" {
		llmErr.Endpoint = c.endpoint
	}
	return llmErr
}

// newHTTPClient returns an http.Client whose transport tags requests with the run id.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &contextAwareTransport{base: http.DefaultTransport},
	}
}

// contextAwareTransport sets X-Request-Id from the run id in the request context.
type contextAwareTransport struct {
	base http.RoundTripper
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	runID := GetRunID(req.Context())
	if runID == nil {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(requestIDHeader, runID.String())
	return t.base.RoundTrip(clone)
}
