// Package config reads runtime settings from DOKAN_* environment variables,
// optionally preloaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name.
const Prefix = "DOKAN"

// Remote transports.
const (
	TransportHTTP = "http"
	TransportNATS = "nats"
)

// Config is the process configuration, read from DOKAN_* environment
// variables.
type Config struct {
	DBPath string `envconfig:"DB_PATH" default:"dokan.db"`

	// RemoteURL is the base URL of the remote service. Empty means no
	// remote: every mutation is queued.
	RemoteURL       string        `envconfig:"REMOTE_URL"`
	RemoteTransport string        `envconfig:"REMOTE_TRANSPORT" default:"http"`
	NATSURL         string        `envconfig:"NATS_URL"`
	NATSSubject     string        `envconfig:"NATS_SUBJECT" default:"dokan.mutations"`
	DeliveryTimeout time.Duration `envconfig:"DELIVERY_TIMEOUT" default:"5s"`
	ProbeInterval   time.Duration `envconfig:"PROBE_INTERVAL" default:"15s"`

	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`

	// MetricsAddr enables the Prometheus endpoint of `dokan run` when set.
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// SeedCatalog overrides the embedded starter catalog.
	SeedCatalog string `envconfig:"SEED_CATALOG"`
}

// RemoteConfigured reports whether any remote endpoint is set for the chosen
// transport.
func (c *Config) RemoteConfigured() bool {
	if c.RemoteTransport == TransportNATS {
		return c.NATSURL != ""
	}
	return c.RemoteURL != ""
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.RemoteTransport {
	case TransportHTTP, TransportNATS:
	default:
		return fmt.Errorf("%s_REMOTE_TRANSPORT must be %q or %q, got %q",
			Prefix, TransportHTTP, TransportNATS, c.RemoteTransport)
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("%s_DELIVERY_TIMEOUT must be positive", Prefix)
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("%s_PROBE_INTERVAL must be positive", Prefix)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("%s_LOW_STOCK_THRESHOLD must not be negative", Prefix)
	}
	return nil
}

// Load reads envFiles (empty names and missing files are skipped) and then
// the environment. Variables already set in the environment win over the
// files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
