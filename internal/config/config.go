// Package config defines the dashboard service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/prodboard/pkg/config"
	"github.com/abgdnv/prodboard/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Store      config.StoreConfig    `koanf:"store"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	NATS       config.NATSConfig     `koanf:"nats"`
	Catalog    CatalogConfig         `koanf:"catalog"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
}

// CatalogConfig tunes the dashboard behavior itself.
type CatalogConfig struct {
	// PageSize is the default product page size.
	PageSize int `koanf:"pageSize"`
	// SearchDebounce is the window used to coalesce search keystrokes.
	SearchDebounce time.Duration `koanf:"searchDebounce"`
}

func (c *CatalogConfig) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid catalog page size: %d", c.PageSize)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("invalid search debounce window: %v", c.SearchDebounce)
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))
	b.WriteString(fmt.Sprintf("  server.rateLimit.rps: %v\n", c.HTTPServer.RateLimit.RPS))

	b.WriteString(c.Store.String())
	b.WriteString(c.NATS.String())

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.pageSize: %d\n", c.Catalog.PageSize))
	b.WriteString(fmt.Sprintf("  catalog.searchDebounce: %v\n", c.Catalog.SearchDebounce))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
