package purgetestusers

import (
	"fmt"
	"time"

	"legalaid-seeder/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
	// Concurrency bounds parallel auth deletions.
	Concurrency int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Timeout:     60 * time.Second,
		Concurrency: 4,
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
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}
