package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	StorageDriver      string
	DBPath             string
	GenerationProvider string
	GenerationDelay    time.Duration
	GenerationRate     int // requests per minute
	AnthropicAPIKey    string
	AnthropicModel     string
	OpenAIAPIKey       string
	OpenAIModel        string
	VideoProvider      string
	YouTubeAPIKey      string
	LogLevel           string
	LogFile            string
	MaxUploadSize      int64
	CORSOrigins        []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	delay, err := time.ParseDuration(getEnv("GENERATION_DELAY", "1500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_DELAY: %w", err)
	}
	rate, err := strconv.Atoi(getEnv("GENERATION_RATE", "30"))
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid GENERATION_RATE %q", os.Getenv("GENERATION_RATE"))
	}
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE", "52428800"), 10, 64) // 50MB default
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		DBPath:             getEnv("DB_PATH", "./storage/easystudy.db"),
		GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", "mock")),
		GenerationDelay:    delay,
		GenerationRate:     rate,
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		VideoProvider:      strings.ToLower(getEnv("VIDEO_PROVIDER", "mock")),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		MaxUploadSize:      maxUpload,
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
	}

	switch cfg.StorageDriver {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	switch cfg.GenerationProvider {
	case "mock", "anthropic", "openai":
	default:
		return nil, fmt.Errorf("unknown GENERATION_PROVIDER %q", cfg.GenerationProvider)
	}
	switch cfg.VideoProvider {
	case "mock", "youtube":
	default:
		return nil, fmt.Errorf("unknown VIDEO_PROVIDER %q", cfg.VideoProvider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
