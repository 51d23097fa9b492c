package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChaliniM/Healthcare/internal/server"
	"github.com/ChaliniM/Healthcare/pkg/config"
	"github.com/ChaliniM/Healthcare/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Build the clinic server
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to build clinic server: %v", err)
	}

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalf("Failed to start clinic server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down clinic server...")
	if err := srv.Stop(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
