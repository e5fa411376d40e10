package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"achivo/internal/config"
	"achivo/internal/domain/service"
	"achivo/internal/handler"
	cronpkg "achivo/internal/infrastructure/cron"
	infradb "achivo/internal/infrastructure/db"
	"achivo/internal/infrastructure/dify"
	"achivo/internal/infrastructure/gotrue"
	"achivo/internal/infrastructure/postgres"
	"achivo/internal/infrastructure/recordstore"
	infraredis "achivo/internal/infrastructure/redis"
	"achivo/internal/logger"
	"achivo/internal/middleware"
	"achivo/internal/observability"
	svc "achivo/internal/service"
	"achivo/pkg/jwt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App represents the application
type App struct {
	config        *config.Config
	logger        *zap.Logger
	httpServer    *http.Server
	metricsServer *http.Server
	sweeper       *cronpkg.VisitorSweeper
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	chatService   service.ChatService
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&cfg.Logging, cfg.Service.Name)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Initialize PostgreSQL connection pool
	ctx := context.Background()
	dbPool, err := infradb.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("connected to PostgreSQL")

	redisClient, err := infraredis.NewClient(&cfg.Redis)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize storages
	sessions := infraredis.NewSessionStorage(redisClient, cfg.Session.TTL)
	states := infraredis.NewOAuthStateStorage(redisClient)

	authServer := gotrue.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	refresher := svc.NewSessionRefresher(sessions, authServer)

	recordClient := recordstore.NewClient(dbPool, jwt.NewTokenManager(cfg.Supabase.JWTSecret), recordstore.Options{
		ServiceRoleKey: cfg.Supabase.ServiceRoleKey,
		RetryBudget:    cfg.Database.RetryBudget,
		Refresher:      refresher,
		Observer:       metrics,
		Logger:         log.Named("recordstore"),
	})
	scoper := postgres.NewScoper(recordClient)

	// Initialize services
	gateway := dify.NewClient(cfg.Dify.BaseURL, cfg.Dify.APIKey, cfg.Dify.Timeout)
	checker := svc.NewCompletionChecker(gateway)
	writer := svc.NewGoalWriter(scoper, svc.GoalWriterConfig{
		SaveTimeout:         cfg.Goals.SaveTimeout,
		CompensateOnFailure: cfg.Goals.CompensateOnFailure,
		CompensationTimeout: cfg.Goals.CompensationTimeout,
	}, metrics, log.Named("goal_writer"))
	chatService := svc.NewChatService(gateway, checker, writer, metrics, log.Named("chat"))
	goalReader := svc.NewGoalReader(scoper, log.Named("goal_reader"))
	taskService := svc.NewTaskService(scoper, log.Named("tasks"))
	authService := svc.NewAuthService(authServer, sessions, states, scoper, svc.AuthConfig{
		SiteURL:    cfg.Site.URL,
		SessionTTL: cfg.Session.TTL,
		StateTTL:   cfg.Session.StateTTL,
	}, log.Named("auth"))
	log.Info("services initialized")

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.Session.CookieName, log)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)

	// Initialize handlers
	router := handler.NewRouter(
		handler.NewChatHandler(chatService),
		handler.NewGoalHandler(goalReader, taskService),
		handler.NewAuthHandler(authService, cfg.Site.URL, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		}, log),
		handler.NewHealthHandler(scoper, log),
		authMiddleware,
		rateLimiter,
		metrics,
		log,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router.Setup(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Port > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metricsMux,
		}
	}

	return &App{
		config:        cfg,
		logger:        log,
		httpServer:    httpServer,
		metricsServer: metricsServer,
		sweeper:       cronpkg.NewVisitorSweeper(rateLimiter, cfg.RateLimit.SweepInterval, cfg.RateLimit.VisitorTTL, log),
		dbPool:        dbPool,
		redisClient:   redisClient,
		chatService:   chatService,
	}, nil
}

// ChatService exposes the goal dialogue for command line use
func (a *App) ChatService() service.ChatService {
	return a.chatService
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run starts the application
func (a *App) Run() error {
	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	if err := a.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start visitor sweeper: %w", err)
	}

	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	if a.metricsServer != nil {
		go func() {
			a.logger.Info("starting metrics server", zap.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	a.logger.Info("service started",
		zap.String("service", a.config.Service.Name),
		zap.String("environment", a.config.Service.Environment),
		zap.Int("port", a.config.HTTP.Port),
	)

	// Wait for interrupt signal
	<-quit
	a.logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	a.sweeper.Stop()

	a.logger.Info("server stopped")
	a.Close()
	return nil
}

// Close releases the database and Redis connections
func (a *App) Close() {
	a.dbPool.Close()
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close Redis client", zap.Error(err))
	}
	_ = a.logger.Sync()
}
