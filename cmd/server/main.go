package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate-dashboard/internal/cache"
	"climate-dashboard/internal/casestudy"
	"climate-dashboard/internal/config"
	"climate-dashboard/internal/handlers"
	"climate-dashboard/internal/repository"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-api", version, logging.ParseLevel(cfg.Logging.Level))
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting climate dashboard API server", logging.Fields{
		"server_host":      cfg.Server.Host,
		"server_port":      cfg.Server.Port,
		"archive_enabled":  cfg.Database.Enabled,
		"field_policy":     cfg.Simulation.FieldPolicy,
		"cache_size":       cfg.Simulation.CacheSize,
		"grid_rows":        cfg.Simulation.GridRows,
		"grid_cols":        cfg.Simulation.GridCols,
		"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
	})

	metricsCollector := metrics.NewCollector("climate_dashboard", prometheus.DefaultRegisterer)

	// Initialize services
	simService := services.NewSimulationService(
		services.OptionsFromConfig(cfg.Simulation),
		cache.New(cfg.Simulation.CacheSize),
		logger,
		metricsCollector,
	)
	caseService := services.NewCaseStudyService(casestudy.Default(), logger, metricsCollector)

	// The run archive is optional
	var archive *services.ArchiveService
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg.Database.Connection(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{
				"db_host": cfg.Database.Host,
				"db_name": cfg.Database.Database,
			}, err)
		}
		defer db.Close()

		runRepo := repository.NewRunRepository(db, logger)
		archive = services.NewArchiveService(runRepo, simService, nil, logger, metricsCollector)
	}

	climateHandler := handlers.NewClimateHandler(simService, caseService, archive, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	climateHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{
			"signal": sig.String(),
		})
	case err := <-serverErr:
		logger.Error(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
