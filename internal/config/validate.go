package config

import (
	"fmt"
	"slices"
	"strings"
)

// hardMaxPageSize caps any configured page size.
const hardMaxPageSize = 100

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Server.WriteRateLimit < 0 {
		return fmt.Errorf("server.write_rate_limit must be >= 0 (got %d)", c.Server.WriteRateLimit)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}

	if err := c.Listing.validate(); err != nil {
		return fmt.Errorf("listing: %w", err)
	}

	if c.Broker.Enabled {
		if c.Broker.URL == "" {
			return fmt.Errorf("broker.url is required when the broker is enabled")
		}
		if c.Broker.Exchange == "" {
			return fmt.Errorf("broker.exchange is required when the broker is enabled")
		}
	}

	return nil
}

func (l *ListingConfig) validate() error {
	if l.MaxPageSize < 1 || l.MaxPageSize > hardMaxPageSize {
		return fmt.Errorf("max_page_size must be in 1..%d (got %d)", hardMaxPageSize, l.MaxPageSize)
	}
	if l.DefaultPageSize < 1 || l.DefaultPageSize > l.MaxPageSize {
		return fmt.Errorf("default_page_size must be in 1..%d (got %d)", l.MaxPageSize, l.DefaultPageSize)
	}
	if l.ImageRetentionDays < 0 {
		return fmt.Errorf("image_retention_days must be >= 0 (got %d)", l.ImageRetentionDays)
	}
	return nil
}
