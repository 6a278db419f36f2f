package builddata

import (
	"fmt"
	"time"

	"legalaid-seeder/internal/common/config"
)

type Config struct {
	Enabled     bool
	Timeout     time.Duration
	BatchSize   int
	MaxListings int
	Generator   config.GeneratorConfig
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Timeout:     120 * time.Second,
		BatchSize:   500,
		MaxListings: 1000,
		Generator: config.GeneratorConfig{
			LegalServiceCodeDigits: 4,
			MaxCodeAttempts:        1000,
		},
	}
}

func createConfigFromAppConfig(app *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}

	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}

	op := config.GetOperationConfig(app, OperationID)
	cfg.Enabled = op.Enabled
	if op.Timeout > 0 {
		cfg.Timeout = config.GetDuration(op.Timeout)
	}
	if app.Sink.BatchSize > 0 {
		cfg.BatchSize = app.Sink.BatchSize
	}
	if app.Limits.MaxListings > 0 {
		cfg.MaxListings = app.Limits.MaxListings
	}
	cfg.Generator = app.Generator
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.MaxListings < 0 {
		return fmt.Errorf("max_listings cannot be negative")
	}
	return nil
}
