package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig                  `mapstructure:"app"`
	Supabase   SupabaseConfig             `mapstructure:"supabase"`
	Database   DatabaseConfig             `mapstructure:"database"`
	Sink       SinkConfig                 `mapstructure:"sink"`
	Generator  GeneratorConfig            `mapstructure:"generator"`
	Limits     LimitsConfig               `mapstructure:"limits"`
	Operations map[string]OperationConfig `mapstructure:"operations"`
	Export     ExportConfig               `mapstructure:"export"`
	Server     ServerConfig               `mapstructure:"server"`
	Logging    LoggingConfig              `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// SupabaseConfig points at the hosted backend (PostgREST + GoTrue admin API).
type SupabaseConfig struct {
	URL            string `mapstructure:"url"`
	AnonKey        string `mapstructure:"anon_key"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
	// TestUserPassword is set on every provisioned test user.
	TestUserPassword string `mapstructure:"test_user_password"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig configures the legal-service code registry. An empty address
// disables the registry.
type RedisConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	CodeSetKey string `mapstructure:"code_set_key"`
	PoolSize   int    `mapstructure:"pool_size"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// Sink types
const (
	SinkPostgREST = "postgrest"
	SinkPostgres  = "postgres"
	SinkMemory    = "memory"
)

type SinkConfig struct {
	Type      string `mapstructure:"type"`
	BatchSize int    `mapstructure:"batch_size"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// GeneratorConfig tunes the synthetic record builder.
type GeneratorConfig struct {
	Seed                    int64  `mapstructure:"seed"`
	LegalServiceCodeDigits  int    `mapstructure:"legal_service_code_digits"`
	MaxCodeAttempts         int    `mapstructure:"max_code_attempts"`
	ReferenceDataPath       string `mapstructure:"reference_data_path"`
	SynthesizeReferenceData bool   `mapstructure:"synthesize_reference_data"`
	SynthesizeCount         int    `mapstructure:"synthesize_count"`
}

// LimitsConfig bounds what a single request may ask for.
type LimitsConfig struct {
	MaxListings int `mapstructure:"max_listings"`
	MinUsers    int `mapstructure:"min_users"`
	MaxUsers    int `mapstructure:"max_users"`
}

// OperationConfig holds the settings applicable to every operation.
type OperationConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"` // milliseconds
	MaxRetries int  `mapstructure:"max_retries"`
}

type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats"`
	NumUsers  int      `mapstructure:"num_users"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
