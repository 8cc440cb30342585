// Package main is the entry point for the Mag7 options risk engine. It
// wires the storage layer, the analytic services and the HTTP API, starts
// the daily correlation refresh, and shuts everything down cleanly on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/database"
	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/correlation"
	correlationhandlers "github.com/mag7labs/riskengine/internal/modules/correlation/handlers"
	"github.com/mag7labs/riskengine/internal/modules/exits"
	exitshandlers "github.com/mag7labs/riskengine/internal/modules/exits/handlers"
	"github.com/mag7labs/riskengine/internal/modules/exposure"
	exposurehandlers "github.com/mag7labs/riskengine/internal/modules/exposure/handlers"
	"github.com/mag7labs/riskengine/internal/modules/history"
	historyhandlers "github.com/mag7labs/riskengine/internal/modules/history/handlers"
	"github.com/mag7labs/riskengine/internal/modules/performance"
	performancehandlers "github.com/mag7labs/riskengine/internal/modules/performance/handlers"
	"github.com/mag7labs/riskengine/internal/modules/portfolio"
	portfoliohandlers "github.com/mag7labs/riskengine/internal/modules/portfolio/handlers"
	"github.com/mag7labs/riskengine/internal/modules/profile"
	profilehandlers "github.com/mag7labs/riskengine/internal/modules/profile/handlers"
	"github.com/mag7labs/riskengine/internal/modules/sizing"
	sizinghandlers "github.com/mag7labs/riskengine/internal/modules/sizing/handlers"
	"github.com/mag7labs/riskengine/internal/scheduler"
	"github.com/mag7labs/riskengine/internal/server"
	"github.com/mag7labs/riskengine/pkg/logger"
)

// correlationRefreshSchedule runs after the US close, server local time.
const correlationRefreshSchedule = "30 18 * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// Storage: durable state on the standard profile, recomputable
	// correlation snapshots on the cache profile.
	portfolioDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	historyDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	clock := domain.SystemClock{}

	// Repositories.
	positionRepo, err := portfolio.NewPositionRepository(portfolioDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init position repository")
	}
	tradeRepo, err := portfolio.NewTradeRepository(portfolioDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init trade repository")
	}
	accountRepo, err := portfolio.NewAccountRepository(portfolioDB.Conn(), cfg.InitialCapital, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init account repository")
	}
	profileRepo, err := profile.NewRepository(portfolioDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init profile repository")
	}
	historyRepo, err := history.NewHistoryDB(historyDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init history store")
	}
	correlationRepo, err := correlation.NewRepository(cacheDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init correlation repository")
	}

	// Services.
	portfolioSvc := portfolio.NewService(positionRepo, tradeRepo, accountRepo, clock, log)
	sizingSvc := sizing.NewService(cfg.Risk, log)
	exposureSvc := exposure.NewService(cfg.Risk, log)
	exitsSvc := exits.NewService(clock, log)
	performanceSvc := performance.NewService(log)
	correlationSvc := correlation.NewService(historyRepo, cfg.Symbols, cfg.Risk, log)

	// Daily correlation refresh.
	sched := scheduler.New(log)
	refreshJob := correlation.NewRefreshJob(correlationSvc, correlationRepo, clock, log)
	if err := sched.AddJob(correlationRefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register correlation refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:         log,
		Config:      cfg,
		PortfolioDB: portfolioDB,
		HistoryDB:   historyDB,
		CacheDB:     cacheDB,
		Modules: []server.ModuleHandlers{
			sizinghandlers.NewHandler(sizingSvc, portfolioSvc, profileRepo, log),
			exposurehandlers.NewHandler(exposureSvc, portfolioSvc, positionRepo, profileRepo, correlationRepo, log),
			exitshandlers.NewHandler(exitsSvc, positionRepo, profileRepo, positionRepo, log),
			performancehandlers.NewHandler(performanceSvc, tradeRepo, profileRepo, accountRepo, cfg.Risk, log),
			correlationhandlers.NewHandler(correlationSvc, correlationRepo, log),
			profilehandlers.NewHandler(profileRepo, log),
			historyhandlers.NewHandler(historyRepo, log),
			portfoliohandlers.NewHandler(portfolioSvc, positionRepo, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
