package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot"
	"github.com/leonmmcoset/mtr-nav-bot/internal/directory"
	"github.com/leonmmcoset/mtr-nav-bot/internal/health"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/lifecycle"
	"github.com/leonmmcoset/mtr-nav-bot/internal/middleware"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/ratelimit"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
	"github.com/leonmmcoset/mtr-nav-bot/internal/storage"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/config"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/graceful"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/logger"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Log, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
	}

	config.Watch(v, log, func(updated *config.Config) {
		log.Info("runtime config updated", slog.String("log_level", updated.Log.Level))
	})

	log.Info("starting mtr navigation bot",
		slog.String("env", cfg.AppEnv),
		slog.String("language", cfg.Language),
		slog.String("storage", cfg.Storage.Path),
	)

	catalog, err := i18n.Load(cfg.Language)
	if err != nil {
		log.Error("failed to load message catalogs", slog.Any("error", err))
		os.Exit(1)
	}
	tr := catalog.Translator(cfg.Language)

	store := storage.New(cfg.Storage.Path, log)
	repo := repository.NewProfileRepository(store, log)

	sessions := session.NewManager(log)
	sessionCleaner := session.NewCleaner(sessions, log, cfg.Session.TTL, cfg.Session.CleanInterval)
	go sessionCleaner.Run(ctx)

	go metrics.NewSessionCollector(sessions).Run(ctx)

	plannerClient := planner.NewHTTPClient(cfg.Planner.BaseURL, cfg.Planner.Timeout, cfg.Planner.BreakerCooldown, log)
	fetcher := directory.NewFetcher(cfg.Directory.Timeout, cfg.Directory.CacheTTL, log)

	limiter := ratelimit.NewMemoryLimiter(log)
	go ratelimit.NewCleaner(limiter, log, 10*time.Minute, time.Hour).Run(ctx)
	rateLimitMw := middleware.NewRateLimitMiddleware(
		ratelimit.NewInstrumented(limiter),
		ratelimit.NewRules(cfg.RateLimit),
		tr,
		log,
	)

	b, err := bot.New(cfg, log, tr, sessions, repo, plannerClient, fetcher, rateLimitMw)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("store", store)
	checker.AddCheck("planner", plannerClient)
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	httpServer := newHTTPServer(cfg.Server.Port, checker, log)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- graceful.NewServer(log, httpServer, shutdownTimeout).ListenAndServe(ctx)
	}()

	go b.Start()
	log.Info("bot is running")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error("http server failed", slog.Any("error", err))
		}
	}

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram-bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	if cfg.Sentry.Enabled {
		shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(5 * time.Second)
			return nil
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("mtr navigation bot stopped")
}

func newHTTPServer(addr string, checker *health.Checker, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	handler := logger.Middleware(middleware.New(log)(mux))

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
