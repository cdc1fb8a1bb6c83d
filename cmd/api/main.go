package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/semaphore"

	"stager/internal/domain/presets"
	"stager/internal/http/handlers"
	httpapi "stager/internal/http/httpapi"
	"stager/internal/infra"
	"stager/internal/infra/geoip"
	"stager/internal/metrics"
	"stager/internal/middleware"
	"stager/internal/providers/image"
	"stager/internal/session"
	"stager/internal/storage"
	"stager/internal/upload"
)

const (
	metricsReportInterval = time.Minute
	rateLimitSweep        = 5 * time.Minute
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	catalog, err := presets.Load(cfg.StylePresetsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load style presets")
	}

	generator, err := image.FromConfig(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise image provider")
	}
	if cfg.GeminiAPIKey == "" && cfg.ImageProvider != infra.ProviderSynthetic {
		logger.Warn().Msg("GEMINI_API_KEY is not set; generation requests will fail")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	m := metrics.New()
	defer m.Stop()
	go m.Report(ctx, &logger, metricsReportInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	go limiter.Cleanup(ctx, rateLimitSweep)

	sessions := session.NewManager(session.Config{
		Generator:         generator,
		Blobs:             blobs,
		Catalog:           catalog,
		Gate:              semaphore.NewWeighted(int64(cfg.MaxConcurrentGenerations)),
		Metrics:           m,
		Logger:            &logger,
		GenerationTimeout: cfg.GenerationTimeout,
		RequestID:         middleware.RequestIDFromContext,
	}, cfg.MaxSessions, cfg.SessionTTL)
	defer sessions.Close()

	app := &handlers.App{
		Sessions:       sessions,
		Uploads:        upload.New(blobs, cfg.MaxUploadBytes),
		Blobs:          blobs,
		Catalog:        catalog,
		Metrics:        m,
		Logger:         &logger,
		Provider:       cfg.ImageProvider,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  resolver.Lookup(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("provider", cfg.ImageProvider).
			Str("storage", cfg.StorageDriver).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Int("sessions", sessions.Len()).Msg("server stopped")
}

func newBlobStore(cfg *infra.Config) (storage.BlobStore, error) {
	if cfg.StorageDriver == infra.StorageFile {
		return storage.NewFileStore(cfg.StoragePath)
	}
	return storage.NewMemoryStore(), nil
}
