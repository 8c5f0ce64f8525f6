package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/config"
	"github.com/223nobody/GameAnalysis/internal/history"
	"github.com/223nobody/GameAnalysis/internal/httpx"
	"github.com/223nobody/GameAnalysis/internal/metrics"
	"github.com/223nobody/GameAnalysis/internal/question"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the handlers and backends the router serves.
type Deps struct {
	DB        Pinger
	Redis     *redis.Client
	Questions *question.HTTPHandler
	History   *history.HTTPHandler
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter wires health, metrics and the API routes.
func NewRouter(cfg *config.App, logger zerolog.Logger, deps Deps) http.Handler {
	m := deps.Metrics
	if m == nil {
		m = metrics.Nop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestContext(logger))
	r.Use(instrument(m))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/healthz", healthHandler(deps.DB, deps.Redis))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	limited := rateLimit(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	r.Route("/api", func(r chi.Router) {
		if deps.Questions != nil {
			r.Route("/questions", func(r chi.Router) {
				deps.Questions.Routes(r, limited)
			})
			r.Get("/stats/summary", deps.Questions.HandleSummary)
		}
		if deps.History != nil {
			deps.History.Routes(r, limited)
		}
	})
	return r
}

// NewHTTPServer wraps the router in an http.Server.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, logger, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func healthHandler(db Pinger, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		if db != nil {
			checks["database"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				checks["database"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				// Reported only; redis never fails the check.
				checks["redis"] = err.Error()
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httpx.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
