package buildusers

import (
	"fmt"
	"time"

	"legalaid-seeder/internal/common/config"
)

type Config struct {
	Enabled  bool
	Timeout  time.Duration
	MinUsers int
	MaxUsers int
	// Password is set on every created user.
	Password  string
	Generator config.GeneratorConfig
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:  true,
		Timeout:  60 * time.Second,
		MinUsers: 1,
		MaxUsers: 25,
		Password: "seeded-test-user",
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
	if app.Limits.MinUsers > 0 {
		cfg.MinUsers = app.Limits.MinUsers
	}
	if app.Limits.MaxUsers > 0 {
		cfg.MaxUsers = app.Limits.MaxUsers
	}
	if app.Supabase.TestUserPassword != "" {
		cfg.Password = app.Supabase.TestUserPassword
	}
	cfg.Generator = app.Generator
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MinUsers < 1 || c.MinUsers > c.MaxUsers {
		return fmt.Errorf("user limits must satisfy 1 <= min_users <= max_users")
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("test user password must be at least 6 characters")
	}
	return nil
}
