package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Research  ResearchConfig
	Media     MediaConfig
	Deploy    DeployConfig
	Storage   StorageConfig
	S3        S3Config
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// OpenAIConfig holds OpenAI API configuration (code generation, embeddings,
// match summaries, prompt sanitization)
type OpenAIConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
}

// ResearchConfig holds the web-search LLM (competitor research) configuration
type ResearchConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// MediaConfig holds the generative image/video API configuration
type MediaConfig struct {
	APIKey         string
	BaseURL        string
	MaxAttempts    int
	BackoffSeconds int
}

// DeployConfig holds hosting provider credentials
type DeployConfig struct {
	RenderAPIKey string
	RailwayToken string
}

// StorageConfig holds local output paths
type StorageConfig struct {
	OutputDir       string
	FounderSeedPath string
}

// S3Config holds S3/MinIO configuration for archive uploads (optional)
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Custom endpoint for MinIO/S3-compatible services
}

// MongoDBConfig holds MongoDB connection details (optional project store)
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	Collection string
	AuthSource string // Database to authenticate against (default: admin)
}

// AuthConfig holds JWT authentication configuration (optional)
type AuthConfig struct {
	JWTSecret string
}

// RetentionConfig controls pruning of terminal jobs and stale archives
type RetentionConfig struct {
	JobTTLMinutes     int
	ArchiveTTLMinutes int
	Schedule          string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8086"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			Temperature:    getEnvFloat("OPENAI_TEMPERATURE", 0.4),
			MaxTokens:      getEnvInt("OPENAI_MAX_TOKENS", 0), // 0 means no limit
		},
		Research: ResearchConfig{
			APIKey:  getEnv("RESEARCH_API_KEY", ""),
			Model:   getEnv("RESEARCH_MODEL", "sonar"),
			BaseURL: getEnv("RESEARCH_BASE_URL", "https://api.perplexity.ai"),
		},
		Media: MediaConfig{
			APIKey:         getEnv("MEDIA_API_KEY", ""),
			BaseURL:        getEnv("MEDIA_BASE_URL", "https://livepeer.studio"),
			MaxAttempts:    getEnvInt("MEDIA_MAX_ATTEMPTS", 3),
			BackoffSeconds: getEnvInt("MEDIA_BACKOFF_SECONDS", 2),
		},
		Deploy: DeployConfig{
			RenderAPIKey: getEnv("RENDER_API_KEY", ""),
			RailwayToken: getEnv("RAILWAY_TOKEN", ""),
		},
		Storage: StorageConfig{
			OutputDir:       getEnv("OUTPUT_DIR", "output"),
			FounderSeedPath: getEnv("FOUNDER_SEED_PATH", "data/founders.json"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", ""),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "foundry"),
			Collection: getEnv("MONGODB_COLLECTION", "projects"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Retention: RetentionConfig{
			JobTTLMinutes:     getEnvInt("JOB_TTL_MINUTES", 240),
			ArchiveTTLMinutes: getEnvInt("ARCHIVE_TTL_MINUTES", 1440),
			Schedule:          getEnv("RETENTION_SCHEDULE", "@every 30m"),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present.
// API credentials are deliberately NOT required: every collaborator either
// degrades to a deterministic fallback or fails the individual request.
func ValidateConfig(config *Config) error {
	if config.Storage.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if config.Media.MaxAttempts < 1 {
		return fmt.Errorf("MEDIA_MAX_ATTEMPTS must be at least 1")
	}
	if config.Media.BackoffSeconds < 0 {
		return fmt.Errorf("MEDIA_BACKOFF_SECONDS must not be negative")
	}
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
