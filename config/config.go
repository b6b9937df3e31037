package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tieubaoca/docqa-be/types"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreMemory   = "memory"
	StoreWeaviate = "weaviate"
	StoreMongo    = "mongo"

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"

	EmbedderHashing = "hashing"
	EmbedderGemini  = "gemini"
	EmbedderOpenAI  = "openai"
)

type Config struct {
	Port           string            `mapstructure:"port"`
	UploadDir      string            `mapstructure:"upload_dir"`
	MaxUploadSize  int64             `mapstructure:"max_upload_size"`
	AllowedOrigins []string          `mapstructure:"allowed_origins"`
	LogLevel       string            `mapstructure:"log_level"`
	LogFormat      string            `mapstructure:"log_format"`
	AI             AIConfig          `mapstructure:"ai"`
	Embedder       EmbedderConfig    `mapstructure:"embedder"`
	Chunker        ChunkerConfig     `mapstructure:"chunker"`
	VectorStore    VectorStoreConfig `mapstructure:"vector_store"`
}

type AIConfig struct {
	Provider       string        `mapstructure:"provider"`
	Model          string        `mapstructure:"model"`
	Endpoint       string        `mapstructure:"endpoint"`
	GeminiAPIKeys  []string      `mapstructure:"gemini_api_keys"`
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	TargetLanguage string        `mapstructure:"target_language"`
}

type EmbedderConfig struct {
	Type      string `mapstructure:"type"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

type ChunkerConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type VectorStoreConfig struct {
	Type     string              `mapstructure:"type"`
	Weaviate WeaviateStoreConfig `mapstructure:"weaviate"`
	Mongo    MongoConfig         `mapstructure:"mongo"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"api_key"`
	ClassName    string       `mapstructure:"class_name"`
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", os.TempDir())
	v.SetDefault("max_upload_size", 10<<20)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.target_language", "Nepali")

	v.SetDefault("embedder.type", EmbedderHashing)
	v.SetDefault("embedder.model", "")
	v.SetDefault("embedder.dimension", 512)

	v.SetDefault("chunker.chunk_size", 600)
	v.SetDefault("chunker.chunk_overlap", 100)

	v.SetDefault("vector_store.type", StoreMemory)
	v.SetDefault("vector_store.weaviate.host", "http://localhost:8080")
	v.SetDefault("vector_store.weaviate.class_name", "Chunk")
	v.SetDefault("vector_store.weaviate.text2vec", "text2vec-transformers")
	v.SetDefault("vector_store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("vector_store.mongo.database", "docqa")
	v.SetDefault("vector_store.mongo.collection", "chunks")
}

// LoadConfig reads configPath (a missing file is not an error) and overlays
// environment variables. Nested keys map to upper-case env names with dots
// replaced by underscores, e.g. VECTOR_STORE_TYPE.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind environment variables
	v.BindEnv("ai.gemini_api_keys", "GEMINI_API_KEY")
	v.BindEnv("ai.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("vector_store.weaviate.api_key", "WEAVIATE_APIKEY")
	v.BindEnv("vector_store.mongo.uri", "MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.AI.GeminiAPIKeys = compact(config.AI.GeminiAPIKeys)
	if config.UploadDir == "" {
		config.UploadDir = os.TempDir()
	}

	return &config, nil
}

// Validate fails fast on a missing provider credential or unusable chunking.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini:
		if len(c.AI.GeminiAPIKeys) == 0 {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", types.ErrInvalidConfig)
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", types.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ai provider %q", types.ErrInvalidConfig, c.AI.Provider)
	}

	switch c.Embedder.Type {
	case EmbedderHashing:
		if c.Embedder.Dimension <= 0 {
			return fmt.Errorf("%w: embedder dimension must be positive", types.ErrInvalidConfig)
		}
	case EmbedderGemini:
		if len(c.AI.GeminiAPIKeys) == 0 {
			return fmt.Errorf("%w: gemini embedder requires GEMINI_API_KEY", types.ErrInvalidConfig)
		}
	case EmbedderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: openai embedder requires OPENAI_API_KEY", types.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown embedder %q", types.ErrInvalidConfig, c.Embedder.Type)
	}

	switch c.VectorStore.Type {
	case StoreMemory, StoreWeaviate, StoreMongo:
	default:
		return fmt.Errorf("%w: unknown vector store %q", types.ErrInvalidConfig, c.VectorStore.Type)
	}

	if c.Chunker.ChunkSize <= 0 || c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap (%d) must be in [0, chunk_size (%d))",
			types.ErrInvalidConfig, c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	}
	return nil
}

// ModelName returns the configured model, or the provider's default when
// none is set.
func (a AIConfig) ModelName() string {
	if a.Model != "" {
		return a.Model
	}
	if a.Provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

func (c *Config) ChunkerParams() types.ChunkerConfig {
	return types.ChunkerConfig{
		ChunkSize:    c.Chunker.ChunkSize,
		ChunkOverlap: c.Chunker.ChunkOverlap,
	}
}

func compact(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
