package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SESSION_TTL_MINUTES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ImageProvider != ProviderGemini {
		t.Fatalf("ImageProvider = %q, want %q", cfg.ImageProvider, ProviderGemini)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image" {
		t.Fatalf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("StorageDriver = %q, want %q", cfg.StorageDriver, StorageMemory)
	}
	if cfg.SessionTTL != 120*time.Minute {
		t.Fatalf("SessionTTL = %s, want 2h", cfg.SessionTTL)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "dalle")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig should reject unknown IMAGE_PROVIDER")
	}
}

func TestLoadConfigRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "synthetic")
	t.Setenv("STORAGE_DRIVER", "s3")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig should reject unknown STORAGE_DRIVER")
	}
}

func TestLoadConfigParsesOriginsAndLimits(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "GEMINI-SDK")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://localhost:5173 , ,https://stager.example.com")
	t.Setenv("MAX_CONCURRENT_GENERATIONS", "0")
	t.Setenv("GEMINI_API_KEY", "  key-123 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ImageProvider != ProviderGeminiSDK {
		t.Fatalf("ImageProvider = %q, want %q", cfg.ImageProvider, ProviderGeminiSDK)
	}
	want := []string{"http://localhost:5173", "https://stager.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %#v, want %#v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
	if cfg.MaxConcurrentGenerations != 1 {
		t.Fatalf("MaxConcurrentGenerations = %d, want 1", cfg.MaxConcurrentGenerations)
	}
	if cfg.GeminiAPIKey != "key-123" {
		t.Fatalf("GeminiAPIKey = %q, want trimmed key", cfg.GeminiAPIKey)
	}
}
