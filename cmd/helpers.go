package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/config"
	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/llm"
	"github.com/urbanthreadz/brandchat/internal/rag"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		_, model = config.DefaultModelFor(provider)
	}

	switch provider {
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required for Google embeddings")
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(model)), nil
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return provider, nil
}

// openIndex creates the configured index backend and, for the chromem
// backend, loads a previously persisted snapshot when one exists.
func openIndex(cfg *config.Config, embedder embeddings.Embedder) (vecindex.Index, error) {
	if cfg.IndexBackend == config.IndexMemory {
		return vecindex.NewMemoryIndex(), nil
	}

	idx, err := vecindex.NewChromemIndex(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	if cfg.IndexPath != "" {
		if _, err := os.Stat(cfg.IndexPath); err == nil {
			if err := idx.Load(context.Background(), cfg.IndexPath); err != nil {
				return nil, fmt.Errorf("loading index from %s: %w", cfg.IndexPath, err)
			}
		}
	}
	return idx, nil
}

// buildAssistant wires the full question-answering stack from config.
func buildAssistant(cfg *config.Config, embedder embeddings.Embedder, index vecindex.Index) (*rag.Assistant, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	biz, err := business.LoadConfig(cfg.BusinessDir, cfg.BusinessID)
	if err != nil {
		return nil, err
	}
	catalog, err := business.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	return rag.NewAssistant(
		rag.NewRetriever(embedder, index, cfg.RetrievalTopK),
		rag.NewSynthesizer(provider, cfg.Model),
		biz,
		catalog,
		cfg.RequestTimeout(),
	), nil
}
