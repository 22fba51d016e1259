package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime settings for the discovery bot.
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Persistence
	DatabasePath string

	// Scoring
	RulesFile          string
	MinConfidenceScore int

	// Source scheduling (minutes); a source with no credentials silently no-ops
	FacebookEnabled         bool
	FacebookIntervalMinutes int
	LinkedInEnabled         bool
	LinkedInIntervalMinutes int
	GoogleEnabled           bool
	GoogleIntervalMinutes   int

	// Source credentials
	FacebookAccessToken  string
	GoogleAPIKey         string
	GoogleSearchEngineID string

	// Alert dispatch
	BatchMode              bool
	BatchIntervalHours     int
	InstantIntervalMinutes int

	// Email channel
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Telegram channel
	TelegramBotToken string
	TelegramChatID   string

	// Optional report archive (Azure Blob Storage)
	StorageAccount   string
	StorageContainer string

	// Dashboard
	DashboardAuthEnabled bool
	DashboardUsername    string
	DashboardPassword    string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabasePath: getEnv("DATABASE_PATH", "data/businesses.db"),

		RulesFile:          getEnv("RULES_FILE", ""),
		MinConfidenceScore: getIntEnv("MIN_CONFIDENCE_SCORE", 60),

		FacebookEnabled:         getBoolEnv("ENABLE_FACEBOOK", true),
		FacebookIntervalMinutes: getIntEnv("FACEBOOK_INTERVAL_MINUTES", 30),
		LinkedInEnabled:         getBoolEnv("ENABLE_LINKEDIN", true),
		LinkedInIntervalMinutes: getIntEnv("LINKEDIN_INTERVAL_MINUTES", 45),
		GoogleEnabled:           getBoolEnv("ENABLE_GOOGLE", true),
		GoogleIntervalMinutes:   getIntEnv("GOOGLE_INTERVAL_MINUTES", 60),

		FacebookAccessToken:  getEnv("FACEBOOK_ACCESS_TOKEN", ""),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),

		BatchMode:              getBoolEnv("ALERT_BATCH_MODE", false),
		BatchIntervalHours:     getIntEnv("ALERT_BATCH_INTERVAL_HOURS", 4),
		InstantIntervalMinutes: getIntEnv("ALERT_INSTANT_INTERVAL_MINUTES", 5),

		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "lead-reports"),

		DashboardAuthEnabled: getBoolEnv("DASHBOARD_AUTH", true),
		DashboardUsername:    getEnv("DASHBOARD_USERNAME", "admin"),
		DashboardPassword:    getEnv("DASHBOARD_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinConfidenceScore < 0 || c.MinConfidenceScore > 100 {
		return fmt.Errorf("MIN_CONFIDENCE_SCORE must be between 0 and 100")
	}

	if c.FacebookIntervalMinutes <= 0 || c.LinkedInIntervalMinutes <= 0 || c.GoogleIntervalMinutes <= 0 {
		return fmt.Errorf("source intervals must be positive")
	}

	if c.BatchIntervalHours <= 0 {
		return fmt.Errorf("ALERT_BATCH_INTERVAL_HOURS must be positive")
	}

	if c.InstantIntervalMinutes <= 0 {
		return fmt.Errorf("ALERT_INSTANT_INTERVAL_MINUTES must be positive")
	}

	if c.DashboardAuthEnabled && c.DashboardPassword == "" {
		return fmt.Errorf("DASHBOARD_PASSWORD is required when DASHBOARD_AUTH is enabled")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
