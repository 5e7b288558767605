package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acmeair-service/internal/cache"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/internal/interface/dataaccess"
	"acmeair-service/internal/interface/rest"
	"acmeair-service/internal/loader"
	"acmeair-service/internal/usecase"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LoggerLevel)
	log.Info("Starting Acme Air Service", "version", cfg.AppVersion, "backend", cfg.DBType)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("acmeair")

	// Set up the data access facade for the configured backend
	facade, err := dataaccess.NewFacade(cfg, log, m)
	if err != nil {
		log.Fatal("Failed to create data access facade", "error", err)
	}

	// Initialize the connection in the background; requests arriving before
	// it is ready are answered with 503 instead of triggering a second
	// connection sequence.
	go func() {
		if err := facade.Initialize(ctx); err != nil {
			log.Error("Error connecting to database", "error", err)
		}
	}()

	// Set up the lookup caches for the flight search hot path
	segmentCache := cache.NewLookup(cfg.FlightDataCacheMaxSize, cfg.CacheTTL(), cfg.UseFlightDataRelatedCaching)
	flightCache := cache.NewLookup(cfg.FlightDataCacheMaxSize, cfg.CacheTTL(), cfg.UseFlightDataRelatedCaching)

	// Set up services
	authService := usecase.NewAuthService(facade, log)
	customerService := usecase.NewCustomerService(facade, log)
	flightService := usecase.NewFlightService(facade, segmentCache, flightCache, log, m)
	bookingService := usecase.NewBookingService(facade, log, m)
	countService := usecase.NewCountService(facade, log)
	dbLoader := loader.NewLoader(facade, cfg, log)

	handler := rest.NewHandler(authService, customerService, flightService, bookingService, countService, dbLoader, facade, log, m, cfg.AppVersion)
	router := rest.NewRouter(handler, cfg.ContextRoot)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port, "contextRoot", cfg.ContextRoot)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := facade.Close(shutdownCtx); err != nil {
		log.Error("Data store disconnect error", "error", err)
	}

	log.Info("Acme Air Service stopped")
}
