package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardstack-api/internal/auth"
	"boardstack-api/internal/authz"
	"boardstack-api/internal/config"
	"boardstack-api/internal/database"
	"boardstack-api/internal/http/handler"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/ratelimit"
	"boardstack-api/internal/repo"
	"boardstack-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the BoardStack API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info(ctx, "starting boardstack api",
		zap.String("service", cfg.OTELServiceName),
		zap.String("env", cfg.AppEnv),
	)

	log.Info(ctx, "running database migrations")
	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed", zap.Uint("schema_version", version))

	// Telemetry is opt-in; a missing collector never blocks startup.
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.AppEnv, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled")
	}

	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	// Rate limiter: Redis-backed when configured, in-process otherwise.
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		log.Info(ctx, "connecting to redis")
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info(ctx, "redis connected")

		var rejections metric.Int64Counter
		if metrics != nil {
			rejections = metrics.RateLimitRejections
		}
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow(), rejections)
	} else {
		log.Info(ctx, "redis not configured, using in-process rate limiter")
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow())
	}

	validator := auth.NewHS256Validator([]byte(cfg.JWTHS256Secret), cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTClockSkew())
	log.Info(ctx, "jwt authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.String("audience", cfg.JWTAudience),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	workspaceRepo := repo.NewWorkspaceRepository(pool)
	spaceRepo := repo.NewSpaceRepository(pool)
	boardRepo := repo.NewBoardRepository(pool)
	taskRepo := repo.NewTaskRepository(pool)
	userRepo := repo.NewUserRepository(pool)

	resolver := authz.NewEntityResolver(workspaceRepo, spaceRepo, boardRepo, taskRepo)
	authorizer := authz.NewAuthorizer(resolver, authz.NewMatrix())
	access := middleware.AccessDeps{
		Authorizer: authorizer,
		Users:      userRepo,
		Metrics:    metrics,
	}

	r := buildRouter(RouterDeps{
		Cfg:         cfg,
		Log:         log,
		Validator:   validator,
		Users:       userRepo,
		Access:      access,
		RateLimiter: limiter,
		Metrics:     metrics,
		Pool:        pool,

		WorkspaceHandler: handler.NewWorkspaceHandler(workspaceRepo),
		SpaceHandler:     handler.NewSpaceHandler(spaceRepo),
		BoardHandler:     handler.NewBoardHandler(boardRepo),
		TaskHandler:      handler.NewTaskHandler(taskRepo),
		UserHandler:      handler.NewUserHandler(userRepo),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
