package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/VoidMesh/noisemap/internal/api"
	"github.com/VoidMesh/noisemap/internal/config"
	"github.com/VoidMesh/noisemap/internal/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	setupLogging(cfg.Logging)
	logger := logging.GetLogger()
	logger.Debug("Configuration loaded", "server_port", cfg.Server.Port, "log_level", cfg.Logging.Level,
		"max_dimension", cfg.Server.MaxDimension, "max_octaves", cfg.Server.MaxOctaves)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	// Initialize API handlers
	logger.Debug("Initializing API handlers", "workers", cfg.Generation.Workers)
	handler := api.NewHandler(cfg)
	router := api.SetupRoutes(handler)
	logger.Debug("API routes configured")

	// Create HTTP server
	logger.Debug("Creating HTTP server", "port", cfg.Server.Port, "read_timeout", cfg.Server.ReadTimeout, "write_timeout", cfg.Server.WriteTimeout, "idle_timeout", cfg.Server.IdleTimeout)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting noisemap preview server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
		logger.Debug("Server stopped listening")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server...", "signal", sig.String())

	// Create context for graceful shutdown
	logger.Debug("Creating shutdown context", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	} else {
		logger.Debug("Server shutdown completed gracefully")
	}

	logger.Info("Server exited")
}

func setupLogging(cfg config.LoggingConfig) {
	if !logging.ValidLevel(cfg.Level) {
		log.Warn("Invalid log level, using info", "level", cfg.Level)
		cfg.Level = string(logging.InfoLevel)
	}
	logging.Configure(cfg.Level, cfg.Format)

	// Libraries logging through the package-level logger share the setup.
	logger := logging.GetLogger()
	logger.SetPrefix("[noisemap] ")
	log.SetDefault(logger)
}
