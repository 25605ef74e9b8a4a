// Package main is the entry point for the portfolio analytics engine: it
// wires storage, market data, the calculation modules and the HTTP API,
// then runs until interrupted.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/config"
	"github.com/foliotracker/engine/internal/database"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/allocation"
	allocationhandlers "github.com/foliotracker/engine/internal/modules/allocation/handlers"
	"github.com/foliotracker/engine/internal/modules/correlation"
	correlationhandlers "github.com/foliotracker/engine/internal/modules/correlation/handlers"
	"github.com/foliotracker/engine/internal/modules/ledger"
	ledgerhandlers "github.com/foliotracker/engine/internal/modules/ledger/handlers"
	"github.com/foliotracker/engine/internal/modules/portfolio"
	portfoliohandlers "github.com/foliotracker/engine/internal/modules/portfolio/handlers"
	"github.com/foliotracker/engine/internal/modules/risk"
	riskhandlers "github.com/foliotracker/engine/internal/modules/risk/handlers"
	"github.com/foliotracker/engine/internal/modules/simulation"
	simulationhandlers "github.com/foliotracker/engine/internal/modules/simulation/handlers"
	"github.com/foliotracker/engine/internal/scheduler"
	"github.com/foliotracker/engine/internal/server"
	"github.com/foliotracker/engine/internal/services"
	"github.com/foliotracker/engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Int("port", cfg.Port).Bool("dev_mode", cfg.DevMode).Msg("Starting engine")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	clock := marketdata.SystemClock{}

	// Statistics come from real history when the history directory is
	// present; otherwise the labeled synthetic fallback stands in.
	var stats marketdata.StatisticsProvider
	var history marketdata.HistoryProvider
	if _, err := os.Stat(cfg.HistoryDir); err == nil {
		store := marketdata.NewHistoryStore(cfg.HistoryDir, log)
		history = store
		stats = marketdata.NewHistoricalStatistics(store, log)
	} else {
		log.Warn().Str("history_dir", cfg.HistoryDir).
			Msg("No price history directory, statistics will be synthetic")
		stats = marketdata.NewSyntheticStatistics(rand.New(rand.NewSource(time.Now().UnixNano())), log)
	}

	calcCache := marketdata.NewCalcCache(db.Conn(), clock, log)
	quoteCache := marketdata.NewQuoteCache(clock)

	// Repositories
	portfolioRepo := portfolio.NewRepository(db.Conn(), log)
	positionRepo := portfolio.NewPositionRepository(db.Conn(), log)
	snapshotRepo := portfolio.NewSnapshotRepository(db.Conn(), log)
	lotRepo := ledger.NewLotRepository(db.Conn(), log)
	scenarioRepo := simulation.NewScenarioRepository(db.Conn(), log)

	// Services
	allocationService := allocation.NewService(log)
	riskService := risk.NewService(stats, allocationService, cfg.BenchmarkTicker, log)
	portfolioService := portfolio.NewService(
		portfolioRepo, positionRepo, snapshotRepo, lotRepo, riskService, quoteCache, clock, log)
	simulationEngine := simulation.NewEngine(riskService, log)
	correlationService := correlation.NewService(stats, calcCache, log)

	// Background jobs
	sched := scheduler.New(log)
	snapshotJob := scheduler.NewSnapshotJob(portfolioRepo, portfolioService, history, cfg.BenchmarkTicker, log)
	if err := sched.AddJob(cfg.SnapshotSchedule, snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}

	if cfg.BackupBucket != "" {
		backupService, err := services.NewBackupService(context.Background(), services.BackupConfig{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.BackupBucket,
			Prefix:    cfg.BackupPrefix,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup service")
		}
		backupJob := scheduler.NewBackupJob(backupService, db.Path(), log)
		if err := sched.AddJob(cfg.BackupSchedule, backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log: log,
		DB:  db,
		Cfg: cfg,
		Handlers: server.Handlers{
			Portfolio:   portfoliohandlers.NewHandler(portfolioService, portfolioRepo, log),
			Ledger:      ledgerhandlers.NewHandler(lotRepo, clock, log),
			Risk:        riskhandlers.NewHandler(riskService, portfolioService, log),
			Allocation:  allocationhandlers.NewHandler(allocationService, portfolioService, log),
			Simulation:  simulationhandlers.NewHandler(simulationEngine, scenarioRepo, portfolioService, log),
			Correlation: correlationhandlers.NewHandler(correlationService, log),
		},
		Stream:    server.NewStreamHandler(portfolioService, log),
		Scheduler: sched,
		Clock:     clock,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Engine stopped")
}
