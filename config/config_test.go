package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-1")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Empty(t, cfg.AI.Model)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.ModelName())
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "Nepali", cfg.AI.TargetLanguage)
	assert.Equal(t, []string{"key-1"}, cfg.AI.GeminiAPIKeys)
	assert.Equal(t, 600, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, StoreMemory, cfg.VectorStore.Type)
	assert.Equal(t, EmbedderHashing, cfg.Embedder.Type)
	assert.NotEmpty(t, cfg.UploadDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
ai:
  provider: openai
  model: gpt-4o-mini
  endpoint: http://localhost:1234/v1
  timeout: 5s
chunker:
  chunk_size: 300
  chunk_overlap: 30
vector_store:
  type: weaviate
  weaviate:
    host: https://weaviate.example.com
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WEAVIATE_APIKEY", "wv-key")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIAPIKey)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "wv-key", cfg.VectorStore.Weaviate.APIKey)
	assert.Equal(t, "https://weaviate.example.com", cfg.VectorStore.Weaviate.Host)
	assert.Equal(t, types.ChunkerConfig{ChunkSize: 300, ChunkOverlap: 30}, cfg.ChunkerParams())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MultipleGeminiKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "a, b,,c")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.AI.GeminiAPIKeys)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "port: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		AI:          AIConfig{Provider: ProviderGemini, GeminiAPIKeys: []string{"k"}},
		Embedder:    EmbedderConfig{Type: EmbedderHashing, Dimension: 64},
		Chunker:     ChunkerConfig{ChunkSize: 600, ChunkOverlap: 100},
		VectorStore: VectorStoreConfig{Type: StoreMemory},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing gemini key", func(c *Config) { c.AI.GeminiAPIKeys = nil }},
		{"missing openai key", func(c *Config) { c.AI.Provider = ProviderOpenAI }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "claude" }},
		{"unknown embedder", func(c *Config) { c.Embedder.Type = "word2vec" }},
		{"openai embedder without key", func(c *Config) { c.Embedder.Type = EmbedderOpenAI }},
		{"zero dimension", func(c *Config) { c.Embedder.Dimension = 0 }},
		{"unknown store", func(c *Config) { c.VectorStore.Type = "chroma" }},
		{"overlap equals size", func(c *Config) { c.Chunker.ChunkOverlap = 600 }},
		{"overlap larger than size", func(c *Config) { c.Chunker.ChunkOverlap = 700 }},
		{"negative overlap", func(c *Config) { c.Chunker.ChunkOverlap = -1 }},
		{"zero size", func(c *Config) { c.Chunker.ChunkSize = 0 }},
	}

	require.NoError(t, validConfig().Validate())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_OpenAIDefaultModel(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: openai
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.AI.Model)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.ModelName())
}

func TestAIConfig_ModelName(t *testing.T) {
	testCases := []struct {
		name string
		ai   AIConfig
		want string
	}{
		{"gemini default", AIConfig{Provider: ProviderGemini}, DefaultGeminiModel},
		{"openai default", AIConfig{Provider: ProviderOpenAI}, DefaultOpenAIModel},
		{"explicit model wins", AIConfig{Provider: ProviderOpenAI, Model: "llama-3.1-8b"}, "llama-3.1-8b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ai.ModelName())
		})
	}
}
