package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the ContentForge server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	LLM        LLMConfig
	Worker     WorkerConfig
	Transcript TranscriptConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type StorageConfig struct {
	SupabaseURL string
	ServiceKey  string
	Bucket      string
}

type LLMConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
}

type OpenAIConfig struct {
	APIKey          string
	Model           string
	TranscribeModel string
}

type WorkerConfig struct {
	Secret     string
	BatchSize  int
	MaxRetries int
}

type TranscriptConfig struct {
	CaptionTimeout    time.Duration
	TranscribeTimeout time.Duration
	CacheTTL          time.Duration
}

var validProviders = map[string]bool{
	"openai": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first if present.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CONTENTFORGE_PORT", 8080),
			Env:  envString("CONTENTFORGE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Storage: StorageConfig{
			SupabaseURL: os.Getenv("SUPABASE_URL"),
			ServiceKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
			Bucket:      envString("STORAGE_BUCKET", "audio-uploads"),
		},
		LLM: LLMConfig{
			Provider:         envString("LLM_PROVIDER", "openai"),
			InferenceTimeout: envDurationSecs("LLM_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:          os.Getenv("OPENAI_API_KEY"),
				Model:           envString("OPENAI_MODEL", "gpt-4o-mini"),
				TranscribeModel: envString("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
			},
		},
		Worker: WorkerConfig{
			Secret:     os.Getenv("WORKER_SECRET"),
			BatchSize:  envInt("WORKER_BATCH_SIZE", 5),
			MaxRetries: envInt("JOB_MAX_RETRIES", 3),
		},
		Transcript: TranscriptConfig{
			CaptionTimeout:    envDurationSecs("CAPTION_FETCH_TIMEOUT_SECS", 30*time.Second),
			TranscribeTimeout: envDurationSecs("TRANSCRIBE_TIMEOUT_SECS", 60*time.Second),
			CacheTTL:          envDuration("TRANSCRIPT_CACHE_TTL", 30*24*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Worker.Secret == "" {
		return fmt.Errorf("WORKER_SECRET is required")
	}
	if c.Worker.BatchSize < 1 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be at least 1, got %d", c.Worker.BatchSize)
	}

	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("LLM_PROVIDER must be one of openai, mock; got %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
	}

	if c.Storage.SupabaseURL != "" &&
		!strings.HasPrefix(c.Storage.SupabaseURL, "http://") &&
		!strings.HasPrefix(c.Storage.SupabaseURL, "https://") {
		return fmt.Errorf("SUPABASE_URL must start with http:// or https://, got %q", c.Storage.SupabaseURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
