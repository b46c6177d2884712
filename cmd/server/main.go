package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/config"
	"github.com/maxviazov/gps-performance-service/internal/handler"
	"github.com/maxviazov/gps-performance-service/internal/logger"
	"github.com/maxviazov/gps-performance-service/internal/matcher"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/repository/postgres"
	"github.com/maxviazov/gps-performance-service/internal/service"
)

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	// The catalog is versioned reference data; a broken catalog file means
	// the whole engine would misinterpret metrics, so startup fails fast.
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("catalog loading failed: %v", err)
	}
	appLogger.Info().Str("catalog_version", cat.Version()).Msg("canonical metric catalog loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer repo.Close()

	pool := repo.Pool()
	profiles := postgres.NewProfileRepository(pool)
	reports := postgres.NewReportRepository(pool)
	playerMaps := postgres.NewPlayerMappingRepository(pool)
	roster := postgres.NewRosterRepository(pool)
	tx := postgres.NewTxManager(pool)

	matcherOpts := matcher.Options{
		MinAcceptScore:     cfg.Engine.Matcher.MinAcceptScore,
		OverlapBoostScore:  cfg.Engine.Matcher.OverlapBoostScore,
		MinOverlapTokenLen: matcher.DefaultOptions().MinOverlapTokenLen,
	}

	profileSvc := service.NewProfileService(profiles, cat, appLogger)
	reportSvc := service.NewReportService(reports, profiles, cat, appLogger)
	matchSvc := service.NewMatchingService(reports, playerMaps, roster, tx, matcherOpts, appLogger)
	analysisSvc := service.NewAnalysisService(reports, profiles, playerMaps, cat, cfg.Engine.Baseline, clockwork.NewRealClock(), appLogger)

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, postgres.NewPinger(pool), profileSvc, reportSvc, matchSvc, analysisSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("http server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
