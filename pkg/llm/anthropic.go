package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
	"github.com/ekaya-inc/ticket-insights/pkg/logging"
)

// DefaultAnthropicEndpoint is used when no base URL is configured.
const DefaultAnthropicEndpoint = "https://api.anthropic.com/v1"

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client   *anthropic.Client
	endpoint string
	model    string
	logger   *zap.Logger
}

// NewAnthropicClient creates a Messages API client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultAnthropicEndpoint
	}

	client := anthropic.NewClient(cfg.APIKey,
		anthropic.WithBaseURL(strings.TrimSuffix(endpoint, "/")),
		anthropic.WithHTTPClient(newHTTPClient(cfg.Timeout)),
	)

	return &AnthropicClient{
		client:   client,
		endpoint: endpoint,
		model:    cfg.Model,
		logger:   logger.Named("llm"),
	}, nil
}

// GenerateResponse sends prompt as a single user message.
func (c *AnthropicClient) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	temperature float64,
	maxTokens int,
) (*GenerateResponseResult, error) {
	logger := c.logger.With(contextFields(ctx)...)
	logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature),
		zap.Int("max_tokens", maxTokens))

	temp := float32(temperature)
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		System:      systemMessage,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		llmErr := ClassifyError(err)
		llmErr.Model = c.model
		llmErr.Endpoint = c.endpoint
		logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error_type", string(llmErr.Type)),
			zap.Bool("retryable", llmErr.Retryable),
			zap.String("error", logging.SanitizeError(err)))
		return nil, llmErr
	}

	content, ok := extractText(resp)
	if !ok {
		return nil, fmt.Errorf("no text content in response: %w", apperrors.ErrEmptyResponse)
	}

	logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &GenerateResponseResult{
		Content:          content,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return c.endpoint
}

// extractText concatenates the text blocks of a reply.
func extractText(resp anthropic.MessagesResponse) (string, bool) {
	var sb strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
			found = true
		}
	}
	return sb.String(), found
}
