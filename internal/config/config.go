package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig points at an OpenAI-compatible endpoint for one model.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	KeyEnv      string  `yaml:"key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
}

// FetchConfig bounds the document download.
type FetchConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	BackoffBase    time.Duration `yaml:"backoff_base"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxPayloadSize int64         `yaml:"max_payload_size"`
}

// ExtractConfig controls extraction quality gating.
type ExtractConfig struct {
	MinTextLength    int     `yaml:"min_text_length"`
	QualityThreshold float64 `yaml:"quality_threshold"`
}

// ChunkingConfig controls how extracted text is split.
type ChunkingConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	SplitWordCount int `yaml:"split_word_count"`
	MaxChunks      int `yaml:"max_chunks"`
	MinTextLength  int `yaml:"min_text_length"`
}

// EmbeddingConfig selects the embedding provider and index geometry.
type EmbeddingConfig struct {
	LLM          LLMConfig `yaml:"llm"`
	Dimension    int       `yaml:"dimension"`
	RemoteBudget int       `yaml:"remote_budget"`
}

// AnswerConfig controls generation and its rate gate.
type AnswerConfig struct {
	LLM               LLMConfig     `yaml:"llm"`
	MinCallInterval   time.Duration `yaml:"min_call_interval"`
	MaxContextChunks  int           `yaml:"max_context_chunks"`
	MaxContextLength  int           `yaml:"max_context_length"`
	RelevanceFloor    float64       `yaml:"relevance_floor"`
	CacheKeyContext   int           `yaml:"cache_key_context"`
	AnswerCacheTTL    time.Duration `yaml:"answer_cache_ttl"`
	RetrievalTopK     int           `yaml:"retrieval_top_k"`
	MaxConcurrent     int           `yaml:"max_concurrent"`
}

// CacheConfig bounds the shared answer cache.
type CacheConfig struct {
	MaxSizeMB  int           `yaml:"max_size_mb"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type Config struct {
	Fetch     FetchConfig     `yaml:"fetch"`
	Extract   ExtractConfig   `yaml:"extract"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Answer    AnswerConfig    `yaml:"answer"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns a config with all knobs at their documented defaults.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			MaxRetries:     3,
			BackoffBase:    time.Second,
			Timeout:        30 * time.Second,
			MaxPayloadSize: 100 * 1024 * 1024,
		},
		Extract: ExtractConfig{
			MinTextLength:    50,
			QualityThreshold: 0.8,
		},
		Chunking: ChunkingConfig{
			ChunkSize:      1000,
			SplitWordCount: 100,
			MaxChunks:      50,
			MinTextLength:  50,
		},
		Embedding: EmbeddingConfig{
			Dimension:    384,
			RemoteBudget: 5,
		},
		Answer: AnswerConfig{
			LLM: LLMConfig{
				MaxTokens:   500,
				Temperature: 0.3,
				TopP:        0.9,
			},
			MinCallInterval:  500 * time.Millisecond,
			MaxContextChunks: 3,
			MaxContextLength: 500,
			RelevanceFloor:   0.3,
			CacheKeyContext:  500,
			AnswerCacheTTL:   time.Hour,
			RetrievalTopK:    5,
			MaxConcurrent:    10,
		},
		Cache: CacheConfig{
			MaxSizeMB:  512,
			DefaultTTL: time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. API keys may come
// from the environment (and a .env file, if present) via the key_env fields.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.resolveEnv()
	return cfg, nil
}

// FromEnv builds a config without a file, using defaults plus environment keys.
func FromEnv() *Config {
	cfg := Default()
	cfg.resolveEnv()
	return cfg
}

func (c *Config) resolveEnv() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	resolve := func(llm *LLMConfig) {
		if llm.Key == "" && llm.KeyEnv != "" {
			llm.Key = os.Getenv(llm.KeyEnv)
		}
	}
	resolve(&c.Embedding.LLM)
	resolve(&c.Answer.LLM)

	if c.Server.AuthToken == "" {
		c.Server.AuthToken = os.Getenv("API_AUTH_TOKEN")
	}
}
