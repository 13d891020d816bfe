package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	// IndexMemory is the in-process brute-force index. No persistence.
	IndexMemory IndexBackend = "memory"
	// IndexChromem is the chromem-go backed index with file persistence.
	IndexChromem IndexBackend = "chromem"
)

// Config is the top-level brandchat configuration, corresponding to brandchat.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	BusinessID  string `yaml:"business_id" koanf:"business_id"`
	BusinessDir string `yaml:"business_dir" koanf:"business_dir"`
	CatalogPath string `yaml:"catalog_path" koanf:"catalog_path"`

	// AdminKey gates admin mode. Usually supplied via BRANDCHAT_ADMIN_KEY
	// rather than written to disk.
	AdminKey string `yaml:"admin_key,omitempty" koanf:"admin_key"`

	ChunkSize     int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	RetrievalTopK int `yaml:"retrieval_top_k" koanf:"retrieval_top_k"`

	IndexBackend IndexBackend `yaml:"index_backend" koanf:"index_backend"`
	IndexPath    string       `yaml:"index_path" koanf:"index_path"`

	// RateLimitRPM caps completion requests per minute; 0 disables the cap.
	RateLimitRPM int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	MaxConcurrency    int    `yaml:"max_concurrency" koanf:"max_concurrency"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec" koanf:"request_timeout_sec"`
	ListenAddr        string `yaml:"listen_addr" koanf:"listen_addr"`
}
