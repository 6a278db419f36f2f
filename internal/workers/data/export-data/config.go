package exportdata

import (
	"fmt"
	"time"

	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/export"
)

type Config struct {
	Enabled     bool
	Timeout     time.Duration
	OutputDir   string
	Formats     []string
	NumUsers    int
	MaxListings int
	Generator   config.GeneratorConfig
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Timeout:     120 * time.Second,
		OutputDir:   "outputs",
		Formats:     []string{export.FormatJSON},
		NumUsers:    20,
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
	if app.Export.OutputDir != "" {
		cfg.OutputDir = app.Export.OutputDir
	}
	if len(app.Export.Formats) > 0 {
		cfg.Formats = app.Export.Formats
	}
	if app.Export.NumUsers > 0 {
		cfg.NumUsers = app.Export.NumUsers
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
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("at least one export format is required")
	}
	if c.NumUsers < 0 {
		return fmt.Errorf("num_users cannot be negative")
	}
	if c.MaxListings <= 0 {
		return fmt.Errorf("max_listings must be positive")
	}
	return nil
}
