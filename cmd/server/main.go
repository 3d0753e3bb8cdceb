// Package main is the entrypoint for the ContentForge API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contentforge/contentforge/internal/api"
	"github.com/contentforge/contentforge/internal/api/handler"
	mw "github.com/contentforge/contentforge/internal/api/middleware"
	"github.com/contentforge/contentforge/internal/api/response"
	"github.com/contentforge/contentforge/internal/cache"
	"github.com/contentforge/contentforge/internal/config"
	"github.com/contentforge/contentforge/internal/generator"
	"github.com/contentforge/contentforge/internal/job"
	"github.com/contentforge/contentforge/internal/llm"
	"github.com/contentforge/contentforge/internal/storage"
	"github.com/contentforge/contentforge/internal/store"
	"github.com/contentforge/contentforge/internal/transcript"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "llm_provider", cfg.LLM.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create LLM provider
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	slog.Info("LLM provider initialized", "provider", provider.Name())

	// 6. Create store and object storage
	pgStore := store.NewPostgresStore(pool)

	var objects storage.ObjectStore
	if cfg.Storage.SupabaseURL != "" {
		objects = storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.ServiceKey, cfg.Storage.Bucket, 60*time.Second)
		slog.Info("object storage configured", "bucket", cfg.Storage.Bucket)
	} else {
		objects = storage.NewMemoryStore()
		slog.Warn("SUPABASE_URL not set, audio uploads are held in memory")
	}

	// 7. Build the pipeline: resolver -> generator -> job machine
	fetcher := transcript.NewHTTPCaptionFetcher(cfg.Transcript.CaptionTimeout)
	resolver := transcript.NewCachingResolver(
		transcript.NewResolver(fetcher, provider, cfg.Transcript.TranscribeTimeout),
		pgStore, redisCache, cfg.Transcript.CacheTTL)

	gen := generator.New(provider, generator.Config{
		Model:       cfg.LLM.OpenAI.Model,
		CallTimeout: cfg.LLM.InferenceTimeout,
	})

	machine := job.NewMachine(pgStore, redisCache, objects, resolver, gen, cfg.Worker.MaxRetries)

	// 8. Build router with dependencies
	deps := api.Dependencies{
		Auth:         mw.NewAuth(pgStore),
		RateLimit:    mw.NewRateLimit(redisCache, 60),
		WorkerSecret: cfg.Worker.Secret,

		HealthHandler:  healthHandler(pgStore, redisCache),
		SubmitHandler:  handler.NewSubmitHandler(machine),
		StatusHandler:  handler.NewStatusHandler(pgStore, redisCache),
		WorkerHandler:  handler.NewWorkerHandler(machine, cfg.Worker.BatchSize),
		CleanupHandler: handler.NewCleanupHandler(pgStore, redisCache, cfg.Transcript.CacheTTL),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
