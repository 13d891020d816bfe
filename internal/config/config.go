package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ErrValidation marks a configuration that fails validation.
var ErrValidation = errors.New("config validation error")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BRANDCHAT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: BRANDCHAT_ADMIN_KEY -> admin_key, etc.
	if err := k.Load(env.Provider("BRANDCHAT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "BRANDCHAT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// validBackends is the set of recognized index backend values.
var validBackends = map[IndexBackend]bool{
	IndexMemory:  true,
	IndexChromem: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("%w: provider is required", ErrValidation)
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("%w: invalid provider %q: must be one of google, openai, ollama", ErrValidation, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrValidation)
	}
	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("%w: invalid embedding_provider %q", ErrValidation, c.EmbeddingProvider)
	}
	if c.BusinessID == "" {
		return fmt.Errorf("%w: business_id is required", ErrValidation)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrValidation)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be non-negative and smaller than chunk_size", ErrValidation)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("%w: retrieval_top_k must be positive", ErrValidation)
	}
	if c.IndexBackend != "" && !validBackends[c.IndexBackend] {
		return fmt.Errorf("%w: invalid index_backend %q: must be memory or chromem", ErrValidation, c.IndexBackend)
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("%w: rate_limit_rpm must be non-negative", ErrValidation)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max_concurrency must be non-negative", ErrValidation)
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("%w: request_timeout_sec must be positive", ErrValidation)
	}
	return nil
}

// RequestTimeout returns the per-question timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
