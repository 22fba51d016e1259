package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/alerts"
	"github.com/leadscout/discovery-bot/internal/archive"
	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/dashboard"
	"github.com/leadscout/discovery-bot/internal/discovery"
	"github.com/leadscout/discovery-bot/internal/scheduler"
	"github.com/leadscout/discovery-bot/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Business Discovery Bot")

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		logrus.Fatalf("Failed to load scoring rules: %v", err)
	}

	leadStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open lead store: %v", err)
	}
	defer leadStore.Close()

	// Report archive is optional; without a storage account batch snapshots
	// are simply not kept.
	var archiver archive.Archiver
	if cfg.StorageAccount != "" {
		azureArchiver, err := archive.NewAzureArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Warnf("Report archive disabled: %v", err)
		} else {
			archiver = azureArchiver
		}
	}

	notifier := alerts.NewService(cfg)
	gate := alerts.NewGate(leadStore, notifier, archiver, cfg.BatchMode)
	discoveryService := discovery.NewService(cfg, rules, leadStore)

	schedulerService := scheduler.NewService(cfg, discoveryService, gate)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Dashboard and query surface
	dashboardServer := dashboard.NewServer(cfg, rules, leadStore, discoveryService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      dashboardServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
