package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Image provider identifiers accepted by IMAGE_PROVIDER.
const (
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
	ProviderSynthetic = "synthetic"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                   string
	Port                     string
	ImageProvider            string
	GeminiAPIKey             string
	GeminiModel              string
	GeminiBaseURL            string
	HTTPReadTimeout          time.Duration
	HTTPWriteTimeout         time.Duration
	HTTPIdleTimeout          time.Duration
	RateLimitPerMin          int
	CORSAllowedOrigins       []string
	MaxUploadBytes           int64
	MaxSessions              int
	SessionTTL               time.Duration
	MaxConcurrentGenerations int
	GenerationTimeout        time.Duration
	StorageDriver            string
	StoragePath              string
	StylePresetsFile         string
	GeoIPDBPath              string
	DefaultLocale            string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing GEMINI_API_KEY is not an error here; generation reports it per request.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                   getEnv("APP_ENV", "development"),
		Port:                     getEnv("PORT", "8080"),
		ImageProvider:            strings.ToLower(getEnv("IMAGE_PROVIDER", ProviderGemini)),
		GeminiAPIKey:             strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:            getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		HTTPReadTimeout:          time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:         time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:          time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:          getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		MaxUploadBytes:           int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxSessions:              getEnvInt("MAX_SESSIONS", 1000),
		SessionTTL:               time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		MaxConcurrentGenerations: getEnvInt("MAX_CONCURRENT_GENERATIONS", 4),
		GenerationTimeout:        time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 120)),
		StorageDriver:            strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		StoragePath:              getEnv("STORAGE_PATH", "./storage"),
		StylePresetsFile:         os.Getenv("STYLE_PRESETS_FILE"),
		GeoIPDBPath:              os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:            getEnv("DEFAULT_LOCALE", "en"),
	}

	switch cfg.ImageProvider {
	case ProviderGemini, ProviderGeminiSDK, ProviderSynthetic:
	default:
		return nil, fmt.Errorf("IMAGE_PROVIDER %q is not supported", cfg.ImageProvider)
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageFile:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q is not supported", cfg.StorageDriver)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("MAX_SESSIONS must be positive")
	}
	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
