package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top, then applies environment overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset
// variables expand to "" so overrideEmptyConfig can still fill them.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the variable names the hosted
// backend tooling exports.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Supabase.URL, "SUPABASE_URL")
	setIfEmpty(&cfg.Supabase.AnonKey, "SUPABASE_ANON_KEY")
	setIfEmpty(&cfg.Supabase.ServiceRoleKey, "SUPABASE_SERVICE_ROLE_KEY")
	setIfEmpty(&cfg.Supabase.TestUserPassword, "SEED_USER_PASSWORD")
	if cfg.Supabase.TestUserPassword == "" {
		cfg.Supabase.TestUserPassword = "seeded-test-user"
	}

	setIfEmpty(&cfg.Database.Postgres.Host, "DB_HOST")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Postgres.Database, "DB_NAME")

	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "legalaid-seeder"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Supabase.Timeout == 0 {
		cfg.Supabase.Timeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.CodeSetKey == "" {
		cfg.Database.Redis.CodeSetKey = "seeder:legal_server_ids"
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 4
	}
	if cfg.Database.Redis.Timeout == 0 {
		cfg.Database.Redis.Timeout = 3000
	}

	if cfg.Sink.Type == "" {
		cfg.Sink.Type = SinkPostgREST
	}
	if cfg.Sink.BatchSize == 0 {
		cfg.Sink.BatchSize = 500
	}
	if cfg.Sink.Timeout == 0 {
		cfg.Sink.Timeout = 60000
	}

	if cfg.Generator.LegalServiceCodeDigits == 0 {
		cfg.Generator.LegalServiceCodeDigits = 4
	}
	if cfg.Generator.MaxCodeAttempts == 0 {
		cfg.Generator.MaxCodeAttempts = 1000
	}
	if cfg.Generator.SynthesizeCount == 0 {
		cfg.Generator.SynthesizeCount = 50
	}

	if cfg.Limits.MaxListings == 0 {
		cfg.Limits.MaxListings = 1000
	}
	if cfg.Limits.MinUsers == 0 {
		cfg.Limits.MinUsers = 1
	}
	if cfg.Limits.MaxUsers == 0 {
		cfg.Limits.MaxUsers = 25
	}

	if cfg.Operations == nil {
		cfg.Operations = make(map[string]OperationConfig)
	}
	for key, op := range cfg.Operations {
		if op.Timeout == 0 {
			op.Timeout = 120000
		}
		if op.MaxRetries == 0 {
			op.MaxRetries = 3
		}
		cfg.Operations[key] = op
	}

	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "outputs"
	}
	if len(cfg.Export.Formats) == 0 {
		cfg.Export.Formats = []string{"json"}
	}
	if cfg.Export.NumUsers == 0 {
		cfg.Export.NumUsers = 20
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig validates settings every command depends on. Backend
// credentials are checked separately by ValidateBackend.
func validateConfig(cfg *Config) error {
	if d := cfg.Generator.LegalServiceCodeDigits; d < 1 || d > 9 {
		return fmt.Errorf("generator.legal_service_code_digits must be between 1 and 9, got %d", d)
	}
	if cfg.Generator.MaxCodeAttempts < 1 {
		return fmt.Errorf("generator.max_code_attempts must be positive")
	}
	if cfg.Limits.MinUsers > cfg.Limits.MaxUsers {
		return fmt.Errorf("limits.min_users cannot exceed limits.max_users")
	}

	switch cfg.Sink.Type {
	case SinkPostgREST, SinkPostgres, SinkMemory:
	default:
		return fmt.Errorf("sink.type must be %q, %q or %q, got %q", SinkPostgREST, SinkPostgres, SinkMemory, cfg.Sink.Type)
	}

	for _, f := range cfg.Export.Formats {
		switch f {
		case "json", "csv", "xlsx":
		default:
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
	}

	return nil
}

// ValidateBackend checks the settings needed to reach the backend.
func (c *Config) ValidateBackend() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("supabase.url is required")
	}
	if c.Supabase.ServiceRoleKey == "" && c.Supabase.AnonKey == "" {
		return fmt.Errorf("supabase.service_role_key or supabase.anon_key is required")
	}

	if c.Sink.Type == SinkPostgres {
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetOperationConfig retrieves operation settings with fallback to defaults
func GetOperationConfig(cfg *Config, name string) OperationConfig {
	if op, exists := cfg.Operations[name]; exists {
		return op
	}

	return OperationConfig{
		Enabled:    true,
		Timeout:    120000,
		MaxRetries: 3,
	}
}

// IsOperationEnabled reports whether an operation may be served.
func IsOperationEnabled(cfg *Config, name string) bool {
	if op, exists := cfg.Operations[name]; exists {
		return op.Enabled
	}
	return true
}
