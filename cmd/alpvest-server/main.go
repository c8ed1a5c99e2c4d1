package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alpvest/alpvest/internal/server"
	"github.com/alpvest/alpvest/internal/store"
	"github.com/alpvest/alpvest/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// initializeLogger builds the server's zap logger from the configured level.
func initializeLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapConfig.Build()
}

func main() {
	// A missing .env file is fine; environment variables may come from the
	// process environment directly.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server config at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	if addr := os.Getenv("ALPVEST_ADDRESS"); addr != "" {
		cfg.Address = addr
	}
	if redisAddr := os.Getenv("ALPVEST_REDIS_ADDRESS"); redisAddr != "" {
		cfg.RedisAddress = redisAddr
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger, err := initializeLogger(level)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	var runs store.RunStore
	if cfg.RedisAddress != "" {
		redisStore := store.NewRedisStore(cfg.RedisAddress, ttl)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(ctx)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis",
				zap.String("op", "main"),
				zap.String("address", cfg.RedisAddress),
				zap.Error(err),
			)
		}
		defer func() {
			_ = redisStore.Close()
		}()
		runs = redisStore
		logger.Info("using redis run store",
			zap.String("op", "main"),
			zap.String("address", cfg.RedisAddress),
		)
	} else {
		runs = store.NewMemoryStore(ttl)
		logger.Info("using in-memory run store",
			zap.String("op", "main"),
		)
	}

	httpServer := &http.Server{
		Addr:    cfg.Address,
		Handler: server.New(logger, cfg, runs, Version),
	}

	go func() {
		logger.Info("starting server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", Version),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server",
		zap.String("op", "main"),
	)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
