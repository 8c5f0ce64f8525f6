package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/config"
	"github.com/223nobody/GameAnalysis/internal/db"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
	"github.com/223nobody/GameAnalysis/internal/history"
	"github.com/223nobody/GameAnalysis/internal/logging"
	"github.com/223nobody/GameAnalysis/internal/metrics"
	"github.com/223nobody/GameAnalysis/internal/question"
	questionai "github.com/223nobody/GameAnalysis/internal/question/ai"
	"github.com/223nobody/GameAnalysis/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	db    *sql.DB
	redis *redis.Client
	http  *http.Server
}

// New bootstraps the logger, database, optional Redis cache, AI client and
// HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.NewWithOptions(cfg.Name, cfg.Env, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.Info().Msg("starting application bootstrap")

	conn, dialect, err := db.Open(ctx, db.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		AutoMigrate:  cfg.Database.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Bool("auto_migrate", cfg.Database.AutoMigrate).Msg("database ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var redisClient *redis.Client
	var drafts question.DraftCache
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable; draft cache will retry per request")
		}
		drafts = question.NewRedisDraftCache(redisClient, cfg.Redis.DraftTTL)
	} else {
		logger.Info().Msg("REDIS_ADDR not set; draft cache disabled")
	}

	var (
		generator question.Generator
		adviser   history.Adviser
	)
	if cfg.AI.Enabled() {
		client := ai.NewClient(ai.Config{
			BaseURL:    cfg.AI.BaseURL,
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			Timeout:    cfg.AI.Timeout,
			MaxRetries: cfg.AI.MaxRetries,
			RetryBase:  cfg.AI.RetryBase,
		}, logger)
		generator = questionai.NewGenerator(client, logger)
		adviser = history.NewAdviceWriter(client, logger)
		logger.Info().Str("model", client.Model()).Msg("text generation enabled")
	} else {
		logger.Warn().Msg("DEEPSEEK_API_KEY not set; generation routes disabled")
	}

	questionSvc := question.NewService(
		repository.NewQuestionRepository(conn, dialect),
		generator,
		logger,
		question.ServiceOptions{Cache: drafts, Metrics: m},
	)
	historySvc := history.NewService(
		repository.NewHistoryRepository(conn, dialect),
		repository.NewAdvisoryRepository(conn, dialect),
		logger,
		history.ServiceOptions{Adviser: adviser, Metrics: m},
	)

	apiServer := server.NewHTTPServer(cfg, logger, server.Deps{
		DB:        conn,
		Redis:     redisClient,
		Questions: question.NewHTTPHandler(questionSvc, logger),
		History:   history.NewHTTPHandler(historySvc, logger),
		Metrics:   m,
		Gatherer:  reg,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		db:     conn,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	a.Close()

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

// Close releases the database and cache connections.
func (a *Application) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error().Err(err).Msg("database close error")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
