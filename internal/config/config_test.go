package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("expected default model gemini-1.5-flash, got %q", cfg.Model)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 100 {
		t.Errorf("expected default chunking 1000/100, got %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RetrievalTopK != 4 {
		t.Errorf("expected default retrieval_top_k 4, got %d", cfg.RetrievalTopK)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brandchat.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.BusinessID = "test-brand"
	original.ChunkSize = 500
	original.ChunkOverlap = 50
	original.ListenAddr = ":9090"

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.BusinessID != original.BusinessID {
		t.Errorf("business_id: got %q, want %q", loaded.BusinessID, original.BusinessID)
	}
	if loaded.ChunkSize != original.ChunkSize {
		t.Errorf("chunk_size: got %d, want %d", loaded.ChunkSize, original.ChunkSize)
	}
	if loaded.ChunkOverlap != original.ChunkOverlap {
		t.Errorf("chunk_overlap: got %d, want %d", loaded.ChunkOverlap, original.ChunkOverlap)
	}
	if loaded.ListenAddr != original.ListenAddr {
		t.Errorf("listen_addr: got %q, want %q", loaded.ListenAddr, original.ListenAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brandchat.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("BRANDCHAT_PROVIDER", "openai")
	os.Setenv("BRANDCHAT_ADMIN_KEY", "s3cret")
	defer os.Unsetenv("BRANDCHAT_PROVIDER")
	defer os.Unsetenv("BRANDCHAT_ADMIN_KEY")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.AdminKey != "s3cret" {
		t.Errorf("admin_key env override failed: got %q", loaded.AdminKey)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid embedding provider", func(c *Config) { c.EmbeddingProvider = "invalid" }},
		{"empty business id", func(c *Config) { c.BusinessID = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"overlap >= chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero top k", func(c *Config) { c.RetrievalTopK = 0 }},
		{"invalid backend", func(c *Config) { c.IndexBackend = "redis" }},
		{"negative rate limit", func(c *Config) { c.RateLimitRPM = -1 }},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSec = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v is not ErrValidation", err)
			}
		})
	}
}

func TestDefaultModelFor(t *testing.T) {
	model, embedding := DefaultModelFor(ProviderGoogle)
	if model != "gemini-1.5-flash" || embedding != "embedding-001" {
		t.Errorf("google defaults: got %q/%q", model, embedding)
	}

	// Unknown provider falls back to google defaults.
	model, _ = DefaultModelFor("unknown")
	if model != "gemini-1.5-flash" {
		t.Errorf("expected fallback to gemini-1.5-flash, got %q", model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
