// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultSheetRange = "A:Z"
	defaultPort       = 3000
)

// Config holds everything the bot needs to run. Missing required values are
// a startup failure, not something to limp along without.
type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	SlackAppToken      string

	// Exactly one of these is enough; ChannelID wins when both are set.
	ChannelID   string
	ChannelName string

	SheetID           string
	ServiceAccountKey string
	SheetRange        string

	Port   int
	DBPath string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		SlackAppToken:      os.Getenv("SLACK_APP_TOKEN"),
		ChannelID:          os.Getenv("CHANNEL_ID"),
		ChannelName:        os.Getenv("CHANNEL_NAME"),
		SheetID:            os.Getenv("GOOGLE_SHEET_ID"),
		ServiceAccountKey:  os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		SheetRange:         os.Getenv("GOOGLE_SHEET_RANGE"),
		DBPath:             os.Getenv("DB_PATH"),
		Port:               defaultPort,
	}

	var missing []string
	for _, key := range []string{"SLACK_BOT_TOKEN", "SLACK_SIGNING_SECRET", "SLACK_APP_TOKEN"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.ChannelID == "" && cfg.ChannelName == "" {
		return nil, fmt.Errorf("either CHANNEL_ID or CHANNEL_NAME must be set")
	}

	if cfg.SheetRange == "" {
		cfg.SheetRange = defaultSheetRange
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", portStr)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// SheetsEnabled reports whether the ledger integration is configured. Both
// the sheet ID and the service-account credential are needed.
func (c *Config) SheetsEnabled() bool {
	return c.SheetID != "" && c.ServiceAccountKey != ""
}
