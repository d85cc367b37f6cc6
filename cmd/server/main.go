// Command server starts the talent-match HTTP server.
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

	"github.com/fairyhunter13/talent-match/internal/adapter/embedding"
	"github.com/fairyhunter13/talent-match/internal/adapter/embedding/local"
	"github.com/fairyhunter13/talent-match/internal/adapter/embedding/openai"
	"github.com/fairyhunter13/talent-match/internal/adapter/feed"
	httpserver "github.com/fairyhunter13/talent-match/internal/adapter/httpserver"
	redisstore "github.com/fairyhunter13/talent-match/internal/adapter/indexstore/redis"
	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/talent-match/internal/app"
	"github.com/fairyhunter13/talent-match/internal/config"
	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/gap"
	"github.com/fairyhunter13/talent-match/internal/matcher"
	"github.com/fairyhunter13/talent-match/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, embedding, index, and feed instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	occRepo := postgres.NewOccupationRepo(pool)
	courseRepo := postgres.NewCourseRepo(pool)

	// Index store (Redis); absence is tolerated, the index is then rebuilt
	// per process.
	var store domain.IndexStore
	var redisCheck httpserver.HealthCheck
	rstore, err := redisstore.New(cfg.RedisURL)
	if err != nil {
		slog.Warn("index store unavailable, running without persistence", slog.Any("error", err))
	} else {
		store = rstore
		redisCheck = rstore.Ping
		defer func() { _ = rstore.Close() }()
	}

	// Embedding client: API-backed when a key is configured, otherwise the
	// deterministic local embedder keeps dev environments self-contained.
	var embedder domain.EmbeddingClient
	if cfg.OpenAIAPIKey != "" {
		embedder = openai.New(cfg)
	} else {
		slog.Warn("OPENAI_API_KEY not set, using local hash embedder")
		embedder = local.New()
	}
	embedder = embedding.NewCache(embedder, cfg.EmbedCacheSize)

	// Priority skills, optionally overridden from YAML
	priority := gap.DefaultPrioritySkills
	if cfg.PrioritySkillsFile != "" {
		loaded, err := gap.LoadPriorityList(cfg.PrioritySkillsFile)
		if err != nil {
			slog.Error("priority skills file unreadable", slog.String("path", cfg.PrioritySkillsFile), slog.Any("error", err))
			os.Exit(1)
		}
		priority = loaded
	}

	// Core services
	builder := matcher.NewBuilder(occRepo, store, embedder, cfg.IndexTTL)
	fetcher := feed.New(cfg.FeedSources, cfg.FeedTimeout, cfg.FeedCacheTTL)
	matchSvc := usecase.NewMatchService(builder, occRepo, gap.NewAnalyzer(priority))
	recSvc := usecase.NewRecommendService(courseRepo, fetcher, cfg.CourseLimit, cfg.JobLimit)

	dbCheck := func(ctx context.Context) error { return pool.Ping(ctx) }

	srv := httpserver.NewServer(cfg, matchSvc, recSvc)
	handler := app.BuildRouter(cfg, srv, dbCheck, redisCheck)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
