package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"5000"`
	Debug       bool     `envconfig:"DEBUG" default:"false"`
	Environment string   `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN   string   `envconfig:"SENTRY_DSN"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL"`
	OpenAITimeout       time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	ChatModel           string        `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingBatchSize  int           `envconfig:"EMBEDDING_BATCH_SIZE" default:"64"`

	ChunkMaxChars     int           `envconfig:"CHUNK_MAX_CHARS" default:"2000"`
	TopK              int           `envconfig:"TOP_K" default:"3"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"30m"`
	CacheMaxEntries   int           `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`
	HistoryMaxEntries int           `envconfig:"HISTORY_MAX_ENTRIES" default:"50"`
	Retention         time.Duration `envconfig:"RETENTION" default:"30m"`
	SweepInterval     time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	UploadDir   string `envconfig:"UPLOAD_DIR" default:"uploads"`
	ExportDir   string `envconfig:"EXPORT_DIR"`
	MaxFileSize int64  `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	MaxFiles    int    `envconfig:"MAX_FILES" default:"2"`
	// MaxExtractBytes bounds decompressed Word document bodies.
	MaxExtractBytes int64 `envconfig:"MAX_EXTRACT_BYTES" default:"67108864"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docqa-uploads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCQA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ExportDir == "" {
		cfg.ExportDir = os.TempDir()
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ChunkMaxChars <= 0:
		return fmt.Errorf("invalid config: CHUNK_MAX_CHARS must be positive")
	case c.TopK <= 0:
		return fmt.Errorf("invalid config: TOP_K must be positive")
	case c.MaxFiles <= 0:
		return fmt.Errorf("invalid config: MAX_FILES must be positive")
	case c.MaxFileSize <= 0:
		return fmt.Errorf("invalid config: MAX_FILE_SIZE must be positive")
	case c.HistoryMaxEntries <= 0:
		return fmt.Errorf("invalid config: HISTORY_MAX_ENTRIES must be positive")
	case c.CacheTTL <= 0:
		return fmt.Errorf("invalid config: CACHE_TTL must be positive")
	case c.Retention <= 0:
		return fmt.Errorf("invalid config: RETENTION must be positive")
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// MaxUploadBytes bounds a whole multipart upload request.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxFiles)*c.MaxFileSize + 1<<20
}
