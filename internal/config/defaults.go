package config

// defaultModels maps each provider to its chat and embedding model defaults.
var defaultModels = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderGoogle: {Model: "gemini-1.5-flash", EmbeddingModel: "embedding-001"},
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             defaultModels[ProviderGoogle].Model,
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    defaultModels[ProviderGoogle].EmbeddingModel,
		BusinessID:        "urban-threadz",
		BusinessDir:       "businesses",
		CatalogPath:       "data/catalog.json",
		ChunkSize:         1000,
		ChunkOverlap:      100,
		RetrievalTopK:     4,
		IndexBackend:      IndexChromem,
		IndexPath:         "data/index.gob",
		MaxConcurrency:    4,
		RequestTimeoutSec: 30,
		ListenAddr:        ":8080",
	}
}

// DefaultModelFor returns the chat and embedding model defaults for a provider.
// Falls back to the Google defaults for unknown providers.
func DefaultModelFor(provider ProviderType) (model, embeddingModel string) {
	if m, ok := defaultModels[provider]; ok {
		return m.Model, m.EmbeddingModel
	}
	m := defaultModels[ProviderGoogle]
	return m.Model, m.EmbeddingModel
}
