// Package main is the entrypoint for the DevNexus API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/cache"
	"github.com/devnexus/devnexus/internal/config"
	"github.com/devnexus/devnexus/internal/dashboard"
	"github.com/devnexus/devnexus/internal/handler"
	"github.com/devnexus/devnexus/internal/memstore"
	"github.com/devnexus/devnexus/internal/metrics"
	"github.com/devnexus/devnexus/internal/middleware"
	"github.com/devnexus/devnexus/internal/notify"
	"github.com/devnexus/devnexus/internal/repository"
	"github.com/devnexus/devnexus/internal/server"
	"github.com/devnexus/devnexus/internal/service"
	"github.com/devnexus/devnexus/internal/store"
	"github.com/devnexus/devnexus/internal/token"
)

// devPassword is the credential for the seeded development account.
// It is only used when no DATABASE_URL is configured.
const devPassword = "password123"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Store: PostgreSQL when configured, otherwise the seeded in-memory
	// store so the service runs locally with zero infrastructure.
	var (
		st       store.Store
		dbHealth handler.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		cleanups = append(cleanups, repo.Close)
		logger.Info("connected to database")
		st = repo
		dbHealth = repo
	} else {
		hash, err := auth.HashPassword(devPassword)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		st = memstore.NewSeeded(hash)
		logger.Warn("no DATABASE_URL configured, using seeded in-memory store",
			"username", memstore.DevUsername,
		)
	}

	// Cache: optional. Without Redis the notification transport is a
	// no-op and login rate limiting is disabled.
	var (
		cacheClient *cache.Cache
		cacheHealth handler.HealthChecker
		transport   notify.Transport = notify.NewNoopTransport()
	)
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		cleanups = append(cleanups, func() { _ = c.Close() })
		logger.Info("connected to Redis")
		cacheClient = c
		cacheHealth = c
		transport = notify.NewRedisTransport(c.Client())
	} else {
		logger.Warn("no REDIS_URL configured, notifications and login rate limiting are disabled")
	}

	// Token codec: a missing or short secret disables authentication
	// rather than preventing startup.
	var codec *token.Codec
	if cfg.JWTSecretKey != "" {
		c, err := token.New(token.Config{
			SecretKey: cfg.JWTSecretKey,
			Issuer:    cfg.JWTIssuer,
			Audience:  cfg.JWTAudience,
			TTL:       cfg.TokenTTL(),
		}, logger)
		if err != nil {
			logger.Warn("token codec disabled", "error", err)
		} else {
			codec = c
		}
	} else {
		logger.Warn("no JWT_SECRET_KEY configured, authenticated endpoints will reject all requests")
	}

	recorder := metrics.NewInMemory()

	dispatcher := notify.NewDispatcher(transport, logger, recorder)
	aggregator := dashboard.New(st, logger, recorder)
	devops := service.NewDevOps(st, dispatcher, logger, recorder)
	authService := auth.NewService(st, codec, auth.Argon2idVerifier{}, logger, recorder)

	healthHandler := handler.NewHealthHandler(dbHealth, cacheHealth)
	authHandler := handler.NewAuthHandler(authService, logger)
	dashboardHandler := handler.NewDashboardHandler(aggregator, logger)
	projectHandler := handler.NewProjectHandler(devops, aggregator, logger)
	pipelineHandler := handler.NewPipelineHandler(devops, logger)
	workItemHandler := handler.NewWorkItemHandler(devops, logger)
	repoHandler := handler.NewRepoHandler(devops, logger)

	r := setupRouter(routerDeps{
		cfg:       cfg,
		logger:    logger,
		codec:     codec,
		recorder:  recorder,
		cache:     cacheClient,
		health:    healthHandler,
		auth:      authHandler,
		dashboard: dashboardHandler,
		projects:  projectHandler,
		pipelines: pipelineHandler,
		workItems: workItemHandler,
		repos:     repoHandler,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	return srv, cleanup, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	codec    *token.Codec
	recorder metrics.Recorder
	cache    *cache.Cache

	health    *handler.HealthHandler
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	projects  *handler.ProjectHandler
	pipelines *handler.PipelineHandler
	workItems *handler.WorkItemHandler
	repos     *handler.RepoHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	authCfg := middleware.AuthConfig{
		Logger:  d.logger,
		Codec:   d.codec,
		Metrics: d.recorder,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:     d.logger,
		Cache:      d.cache,
		Enabled:    d.cfg.RateLimitLoginEnabled,
		LoginRPM:   d.cfg.RateLimitLoginRPM,
		LoginBurst: d.cfg.RateLimitLoginBurst,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitLogin(rateLimitCfg)).Post("/login", d.auth.Login)
			r.Post("/logout", d.auth.Logout)
			r.Post("/refresh", d.auth.Refresh)
			r.Get("/profile", d.auth.Profile)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authCfg))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/metrics", d.dashboard.Metrics)
				r.Get("/recent-activity", d.dashboard.RecentActivity)
				r.Get("/pipeline-metrics", d.dashboard.PipelineMetrics)
				r.Get("/project-summary", d.dashboard.ProjectSummary)
				r.Get("/health", d.health.SystemStatus)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", d.projects.List)
				r.Get("/{id}", d.projects.Get)
				r.Get("/{id}/metrics", d.projects.Metrics)
			})

			r.Route("/pipelines", func(r chi.Router) {
				r.Get("/", d.pipelines.List)
				r.Get("/{id}", d.pipelines.Get)
				r.Get("/{id}/runs", d.pipelines.Runs)
				r.Get("/{id}/runs/{runId}", d.pipelines.GetRun)
				r.Post("/{id}/run", d.pipelines.Trigger)
			})

			r.Route("/workitems", func(r chi.Router) {
				r.Get("/", d.workItems.List)
				r.Post("/", d.workItems.Create)
				r.Get("/{id}", d.workItems.Get)
				r.Put("/{id}", d.workItems.Update)
				r.With(middleware.RequireAdmin()).Delete("/{id}", d.workItems.Delete)
			})

			r.Route("/repositories", func(r chi.Router) {
				r.Get("/", d.repos.List)
				r.Get("/{id}", d.repos.Get)
				r.Get("/{id}/branches", d.repos.Branches)
				r.Get("/{id}/commits", d.repos.Commits)
			})
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
