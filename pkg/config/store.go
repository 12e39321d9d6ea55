package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreConfig selects and configures the catalog snapshot backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", "postgres".
	Backend string `koanf:"backend"`
	File    struct {
		Path string `koanf:"path"`
	} `koanf:"file"`
	Database struct {
		URL        string        `koanf:"url"`
		Timeout    time.Duration `koanf:"timeout"`
		Migrations string        `koanf:"migrations"`
	} `koanf:"database"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	switch c.Backend {
	case "file":
		b.WriteString(fmt.Sprintf("  file.path: %s\n", c.File.Path))
	case "postgres":
		b.WriteString(fmt.Sprintf("  database.url: %s\n", maskURL(c.Database.URL)))
		b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))
		b.WriteString(fmt.Sprintf("  database.migrations: %s\n", c.Database.Migrations))
	}
	return b.String()
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "file":
		if c.File.Path == "" {
			return fmt.Errorf("file store backend requires a path")
		}
		return nil
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is not configured")
		}
		if !isValidPostgresURL(c.Database.URL) {
			return fmt.Errorf("database URL must start with 'postgres://': %s", c.Database.URL)
		}
		if c.Database.Timeout <= 0 {
			return fmt.Errorf("database connect timeout is not configured")
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend: %q", c.Backend)
	}
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// maskURL hides credentials embedded in a connection URL.
func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}
