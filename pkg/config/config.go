package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
)

// DefaultConfigPath is read when TICKET_INSIGHTS_CONFIG is not set.
const DefaultConfigPath = "config.yaml"

// Storage backends.
const (
	StorageBackendS3    = "s3"
	StorageBackendLocal = "local"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for ticket-insights.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// DataDir is the root for the database file and the tabular files.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"ticket_insights"`

	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Generator GeneratorConfig `yaml:"generator"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"` // console or json
}

// StorageConfig holds the object storage hand-off settings.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"s3"`
	Bucket  string `yaml:"bucket" env:"S3_BUCKET_NAME" env-default:""`
	Region  string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`

	// Endpoint overrides the S3 endpoint for S3-compatible services (MinIO, LocalStack).
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:""`
	UsePathStyle bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE" env-default:"false"`

	// LocalDir is the directory standing in for the bucket when Backend is "local".
	LocalDir string `yaml:"local_dir" env:"LOCAL_STORAGE_DIR" env-default:".bucket"`
}

// LLMConfig holds completion service settings.
type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model       string        `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"200"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"60s"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// APIKey returns the key for the configured provider.
func (c *LLMConfig) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// apiKeyVar names the environment variable that supplies APIKey.
func (c *LLMConfig) apiKeyVar() string {
	if c.Provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// GeneratorConfig holds synthetic data defaults.
type GeneratorConfig struct {
	Seed  uint64 `yaml:"seed" env:"GENERATOR_SEED" env-default:"42"`
	Count int    `yaml:"count" env:"GENERATOR_COUNT" env-default:"100"`
}

// Requirements describes which external collaborators a command needs.
// Validate only checks settings for the collaborators that are required.
type Requirements struct {
	Storage bool
	LLM     bool
}

// Load reads an optional .env file and YAML config with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// A missing YAML file is not an error; values then come from the environment and defaults.
func Load(version string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Version: version,
	}

	path := os.Getenv("TICKET_INSIGHTS_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.validateValues(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// normalize lower-cases enumerated values and resolves the Docker host alias
// for a local S3-compatible endpoint.
func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	if c.Storage.Endpoint != "" {
		c.Storage.Endpoint = ResolveEndpointForDocker(c.Storage.Endpoint)
	}
}

// validateValues checks enumerations and ranges that are invalid for every command.
func (c *Config) validateValues() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.Log.Format)
	}

	switch c.Storage.Backend {
	case StorageBackendS3, StorageBackendLocal:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be s3 or local, got %q", c.Storage.Backend)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLM.Provider)
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Generator.Count < 0 {
		return fmt.Errorf("GENERATOR_COUNT must not be negative, got %d", c.Generator.Count)
	}
	return nil
}

// Validate fails with an error wrapping apperrors.ErrMissingConfig when a
// required collaborator is not configured.
func (c *Config) Validate(req Requirements) error {
	if req.Storage {
		switch c.Storage.Backend {
		case StorageBackendS3:
			if c.Storage.Bucket == "" {
				return fmt.Errorf("%w: S3_BUCKET_NAME must be set when STORAGE_BACKEND=s3", apperrors.ErrMissingConfig)
			}
		case StorageBackendLocal:
			if c.Storage.LocalDir == "" {
				return fmt.Errorf("%w: LOCAL_STORAGE_DIR must be set when STORAGE_BACKEND=local", apperrors.ErrMissingConfig)
			}
		}
	}

	if req.LLM {
		if c.LLM.Model == "" {
			return fmt.Errorf("%w: LLM_MODEL must be set", apperrors.ErrMissingConfig)
		}
		// Self-hosted OpenAI-compatible endpoints may run without a key.
		if c.LLM.APIKey() == "" && c.LLM.BaseURL == "" {
			return fmt.Errorf("%w: %s must be set", apperrors.ErrMissingConfig, c.LLM.apiKeyVar())
		}
	}

	return nil
}

// DBPath returns the path of the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "db", "tickets.db")
}

// TicketsCSVPath returns the path of the generated tickets file.
func (c *Config) TicketsCSVPath() string {
	return filepath.Join(c.DataDir, "data", "tickets.csv")
}

// EnrichedCSVPath returns the path of the enriched tickets export.
func (c *Config) EnrichedCSVPath() string {
	return filepath.Join(c.DataDir, "output", "enriched_tickets.csv")
}
