package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"time"

	"tradeAnalytics/config"
	"tradeAnalytics/internal/adapters/eventfile"
	"tradeAnalytics/internal/adapters/logger"
	"tradeAnalytics/internal/adapters/sqlite"
	"tradeAnalytics/internal/app"
	"tradeAnalytics/internal/trace"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{
		"level":  cfg.LogLevel.String(),
		"format": string(cfg.LogFormat),
	})

	// 3. Initialize Tracing
	if cfg.TracingEnabled {
		if err := trace.Init(os.Stdout); err != nil {
			appLogger.Warn(ctx, "Failed to initialize tracing, continuing without spans", map[string]interface{}{"error": err.Error()})
		}
	}
	if trace.Enabled() {
		appLogger.Info(ctx, "Tracing enabled, exporting spans to stdout")
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := trace.Shutdown(shutdownCtx); err != nil {
				appLogger.Error(context.Background(), err, "Error shutting down tracer")
			}
		}()
	}

	// 4. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath:    cfg.DBPath,
		Logger:    appLogger,
		Retention: cfg.SnapshotRetention,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize snapshot store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing snapshot store")
		}
	}()

	// 5. Initialize Event Source (File Adapter)
	source, err := eventfile.NewSource(cfg.EventsPath, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize event source")
		log.Fatalf("FATAL: Failed to initialize event source: %v", err)
	}
	appLogger.Info(ctx, "Event source ready", map[string]interface{}{"path": source.Path()})

	// 6. Initialize Application Service
	service, err := app.NewAnalyticsService(cfg, appLogger, source, repo)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize analytics service")
		log.Fatalf("FATAL: Failed to initialize analytics service: %v", err)
	}

	// 7. Restore the last-known-good snapshot, then run
	if err := service.Restore(ctx); err != nil {
		appLogger.Warn(ctx, "Continuing without a restored snapshot", map[string]interface{}{"error": err.Error()})
	}

	if err := service.Run(ctx, cfg.RefreshInterval); err != nil {
		appLogger.Error(ctx, err, "Analytics service exited with error")
		os.Exit(1)
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}
