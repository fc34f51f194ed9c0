package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/servo-app/refinery/internal/config"
	"github.com/servo-app/refinery/internal/db"
	"github.com/servo-app/refinery/internal/db/memory"
	dbRedis "github.com/servo-app/refinery/internal/db/redis"
	"github.com/servo-app/refinery/internal/domain/search/dedupe"
	logpkg "github.com/servo-app/refinery/internal/logger"
	"github.com/servo-app/refinery/internal/metrics"
	historyrepo "github.com/servo-app/refinery/internal/repository/history"
	chiTransport "github.com/servo-app/refinery/internal/transport/chi"
	healthuc "github.com/servo-app/refinery/internal/usecase/health"
	historyuc "github.com/servo-app/refinery/internal/usecase/history"
	refineuc "github.com/servo-app/refinery/internal/usecase/refine"
	"github.com/servo-app/refinery/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting refinery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Float64("max_ratio", cfg.Refine.MaxRatio),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterRefineMetrics()
	recorder := metrics.Recorder{}

	refineSvc := refineuc.New(
		dedupe.New(cfg.Refine.MaxRatio),
		refineuc.WithMaxResults(cfg.Refine.MaxResults),
		refineuc.WithRecorder(recorder),
	)
	historySvc := historyuc.New(
		historyrepo.New(store, cfg.History.KeyPrefix, cfg.History.TTL()),
		cfg.History.MaxEntries,
		recorder,
	)
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(refineSvc, historySvc, healthSvc, chiTransport.Limits{
		DefaultRadiusKm: cfg.Refine.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Refine.MaxRadiusKm,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the history store for the configured driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(memory.DefaultCleanupInterval), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
