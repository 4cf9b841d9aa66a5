// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/riff/internal/access"
	"github.com/carterperez-dev/riff/internal/auth"
	"github.com/carterperez-dev/riff/internal/circle"
	"github.com/carterperez-dev/riff/internal/collection"
	"github.com/carterperez-dev/riff/internal/comment"
	"github.com/carterperez-dev/riff/internal/config"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/health"
	"github.com/carterperez-dev/riff/internal/middleware"
	"github.com/carterperez-dev/riff/internal/piece"
	"github.com/carterperez-dev/riff/internal/prompt"
	"github.com/carterperez-dev/riff/internal/server"
	"github.com/carterperez-dev/riff/internal/upload"
	"github.com/carterperez-dev/riff/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"driver", cfg.Database.Driver,
		"max_open_conns", cfg.Database.MaxOpenConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrated")
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	var (
		blacklist   auth.Blacklist
		redisClient *redis.Client
		redisCheck  health.Checker
	)
	if rdb != nil {
		blacklist = rdb
		redisClient = rdb.Client
		redisCheck = rdb
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	} else {
		logger.Info("redis not configured, using in-process fallbacks")
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	uploads, err := upload.NewStore(cfg.Upload)
	if err != nil {
		return err
	}

	resolver := access.NewResolver(db.DB)
	sanitizer := core.NewSanitizer()

	userSvc := user.NewService(user.NewRepository(db.DB))
	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		blacklist,
	)

	promptRepo := prompt.NewRepository(db.DB)
	promptSvc := prompt.NewService(promptRepo, resolver)

	circleSvc := circle.NewService(circle.NewRepository(db.DB), userSvc, promptRepo)
	pieceSvc := piece.NewService(piece.NewRepository(db.DB), resolver, promptSvc, sanitizer)
	commentSvc := comment.NewService(comment.NewRepository(db.DB), resolver, sanitizer)
	collectionSvc := collection.NewService(collection.NewRepository(db.DB), resolver)

	uploadHandler := upload.NewHandler(uploads)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redisCheck, Optional: true},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	router.Handle("/uploads/images/*", uploadHandler.FileServer("/uploads/images/"))

	authenticator := middleware.Authenticator(authSvc)

	router.Route("/v1", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)
		circle.NewHandler(circleSvc).RegisterRoutes(r, authenticator)
		prompt.NewHandler(promptSvc).RegisterRoutes(r, authenticator)
		piece.NewHandler(pieceSvc).RegisterRoutes(r, authenticator)
		comment.NewHandler(commentSvc).RegisterRoutes(r, authenticator)
		collection.NewHandler(collectionSvc).RegisterRoutes(r, authenticator)
		uploadHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
