package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"signetic_scheduler/internal/infrastructure"
	"signetic_scheduler/internal/interfaces"
	"signetic_scheduler/internal/interfaces/http"
	"signetic_scheduler/internal/repository"
	"signetic_scheduler/internal/usecases"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := infrastructure.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}

func run(cfg *infrastructure.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Relational store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Geocoder, optionally backed by Redis overrides
	static := infrastructure.NewStaticGeocoder(infrastructure.DefaultLocations)
	var geocoder interfaces.Geocoder = static
	var overrides http.LocationOverrides
	if cfg.RedisAddr != "" {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		redisGeocoder := infrastructure.NewRedisGeocoder(rdb, static)
		geocoder = redisGeocoder
		overrides = redisGeocoder
		logger.Info("Geocoder overrides enabled", zap.String("redis", cfg.RedisAddr))
	}

	// Language model
	var ai interfaces.AIClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := infrastructure.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		ai = gemini
		logger.Info("Using Gemini", zap.String("model", cfg.GeminiModel))
	} else {
		ai = infrastructure.NewTemplateResponder()
		logger.Warn("GEMINI_API_KEY not set, using template responses")
	}

	availability := usecases.NewAvailabilityService(store, geocoder, logger)
	orchestrator := usecases.NewQueryOrchestrator(usecases.NewIntentExtractor(), availability, ai, logger)

	registry := infrastructure.NewSessionRegistry()
	messageLimiter := infrastructure.NewMessageRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst)
	apiLimiter := infrastructure.NewMessageRateLimiter(5, 10)
	go messageLimiter.RunCleanup(ctx, 5*time.Minute)
	go apiLimiter.RunCleanup(ctx, 5*time.Minute)

	channels := []string{"websocket"}
	if cfg.TelegramBotToken != "" {
		tg, err := infrastructure.NewTelegramClient(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("Telegram disabled", zap.Error(err))
		} else {
			channel := infrastructure.NewTelegramChannel(tg, registry, orchestrator, messageLimiter, cfg.SessionIdleTimeout, logger)
			go channel.Run(ctx, tg.Bot)
			channels = append(channels, "telegram")
		}
	}

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	http.SetupRoutes(r,
		http.NewHandler(registry, messageLimiter, overrides, channels),
		http.NewChatHandler(registry, orchestrator, messageLimiter, cfg.MaxFrameBytes, logger),
		apiLimiter,
	)

	srv := &nethttp.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: r,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *infrastructure.Config, logger *zap.Logger) (interfaces.ClinicStore, func(), error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		db, err := infrastructure.NewSQLiteDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite store", zap.String("dsn", cfg.DatabaseURL))
		return repository.NewSQLiteClinicRepository(db), func() { db.Close() }, nil
	default:
		pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewClinicRepository(pg.Pool), pg.Close, nil
	}
}
