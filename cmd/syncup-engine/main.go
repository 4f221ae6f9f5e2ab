package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/syncupstack/syncup-engine/internal/api"
	"github.com/syncupstack/syncup-engine/internal/cache"
	"github.com/syncupstack/syncup-engine/internal/config"
	"github.com/syncupstack/syncup-engine/internal/engine"
	"github.com/syncupstack/syncup-engine/internal/metrics"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/patterns"
	"github.com/syncupstack/syncup-engine/internal/repo"
	"github.com/syncupstack/syncup-engine/internal/services"
	"github.com/syncupstack/syncup-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting syncup-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		if cfg.Cache.Addr != "" {
			provider, err := cache.NewRedisProvider(cfg.Cache)
			if err != nil {
				logger.Warn("redis cache unavailable, using in-memory cache", slog.Any("error", err))
				cacheProvider = cache.NewMemoryProvider()
			} else {
				cacheProvider = provider
			}
		} else {
			cacheProvider = cache.NewMemoryProvider()
		}
	}
	defer cacheProvider.Close()

	var dataProvider services.DataProvider
	if cfg.Provider.BaseURL != "" {
		dataProvider = repo.NewProviderClient(
			cfg.Provider.BaseURL,
			cfg.Provider.BusyPath,
			cfg.Provider.PreferencesPath,
			cfg.Provider.HistoryPath,
			cfg.Provider.Timeout,
		)
	}

	calculator := engine.NewCalculator(logger, models.SchedulePreferences{
		WorkingHours: []models.ClockRange{{
			Start: cfg.Engine.DefaultWorkStart,
			End:   cfg.Engine.DefaultWorkEnd,
		}},
	})
	detector := engine.NewDetector(logger)
	analyzer := patterns.NewAnalyzer(logger, cfg.Analyzer.BucketMinutes, cfg.Analyzer.MinFrequency)
	ranker := engine.NewRanker(logger, cfg.Ranker)

	service := services.NewSchedulerService(
		logger,
		calculator,
		detector,
		analyzer,
		ranker,
		dataProvider,
		cacheProvider,
		cfg.Cache.AvailabilityTTL,
		cfg.Cache.PatternTTL,
	)

	handler := api.NewHandler(logger, service)
	server := api.NewServer(cfg.Server, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", slog.Any("error", err))
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("syncup-engine stopped")
}
