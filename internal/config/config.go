package config

import (
	"fmt"
	"time"

	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Vault        VaultConfig        `mapstructure:"vault"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Verification VerificationConfig `mapstructure:"verification"`
	Log          LogConfig          `mapstructure:"log"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`  // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Address returns host:port for the HTTP listener.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// GetDSN returns the postgres connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
}

// Enabled reports whether any redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return len(c.Addresses) > 0
}

type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	MountPath  string `mapstructure:"mount_path"`
	SecretPath string `mapstructure:"secret_path"`
	SecretKey  string `mapstructure:"secret_key"`
}

// Enabled reports whether the verification key should be read from vault.
func (c *VaultConfig) Enabled() bool {
	return c.Address != "" && c.SecretPath != ""
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

type RateLimitConfig struct {
	Backend   string        `mapstructure:"backend"` // database, redis or memory
	Window    time.Duration `mapstructure:"window"`
	Threshold int           `mapstructure:"threshold"`
}

type VerificationConfig struct {
	HMACKey        string `mapstructure:"hmac_key"`
	IssuerName     string `mapstructure:"issuer_name"`
	IssuerWebsite  string `mapstructure:"issuer_website"`
	SupportContact string `mapstructure:"support_contact"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	switch constants.DatabaseDriver(c.Database.Driver) {
	case constants.DriverPostgres, constants.DriverSQLite:
	default:
		return errors.ErrInvalidConfig(fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
	}

	switch constants.RateLimitBackend(c.RateLimit.Backend) {
	case constants.RateLimitBackendDatabase, constants.RateLimitBackendMemory:
	case constants.RateLimitBackendRedis:
		if !c.Redis.Enabled() {
			return errors.ErrInvalidConfig("rate_limit.backend is redis but redis.addresses is empty")
		}
	default:
		return errors.ErrInvalidConfig(fmt.Sprintf("unsupported rate limit backend %q", c.RateLimit.Backend))
	}

	if c.RateLimit.Threshold <= 0 {
		return errors.ErrInvalidConfig("rate_limit.threshold must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return errors.ErrInvalidConfig("rate_limit.window must be positive")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.ErrInvalidConfig("kafka is enabled but brokers or topic are missing")
	}

	if c.Verification.HMACKey == "" && !c.Vault.Enabled() {
		return errors.ErrInvalidConfig("verification.hmac_key or vault.secret_path is required")
	}

	return nil
}

//Personal.AI order the ending
