// Command discover runs a single manual discovery pass across all enabled
// sources and sends instant alerts for anything new, without starting the
// scheduler or the dashboard.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/alerts"
	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/discovery"
	"github.com/leadscout/discovery-bot/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		logrus.Fatalf("Failed to load scoring rules: %v", err)
	}

	leadStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open lead store: %v", err)
	}
	defer leadStore.Close()

	discoveryService := discovery.NewService(cfg, rules, leadStore)
	notifier := alerts.NewService(cfg)
	gate := alerts.NewGate(leadStore, notifier, nil, false)

	ctx := context.Background()

	logrus.Info("Running manual discovery...")
	discovered := discoveryService.RunAll(ctx)
	logrus.Infof("Manual discovery completed: %d new businesses", len(discovered))

	if err := gate.RunInstant(ctx); err != nil {
		logrus.Errorf("Alert dispatch failed: %v", err)
	}
}
