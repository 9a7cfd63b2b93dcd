package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
)

// NewClientFromConfig creates the client for the configured provider.
// Returns LLMClient interface to enable dependency injection of mocks.
func NewClientFromConfig(cfg *config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint: cfg.BaseURL,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
		Timeout:  cfg.Timeout,
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		if clientCfg.Endpoint == "" {
			clientCfg.Endpoint = DefaultOpenAIEndpoint
		}
		client, err := NewClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	case config.ProviderAnthropic:
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
