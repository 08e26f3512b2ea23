package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

const envPrefix = "PRISM_VERIFY"

// Loader reads configuration from file, environment variables and defaults.
type Loader struct {
	v   *viper.Viper
	log logger.Logger
}

// NewLoader creates a Loader. configFile may be empty to use the search paths.
func NewLoader(configFile string, log logger.Logger) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/prism-verify/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log}
}

// LoadConfig loads the configuration from the default search paths and the environment.
func LoadConfig(log logger.Logger) (*Config, error) {
	return NewLoader("", log).Load()
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.WrapError(err, constants.ErrCodeInvalidConfig, "failed to read config file")
		}
		l.log.Info(context.Background(), "No config file found, using defaults and environment")
	} else {
		l.log.Info(context.Background(), "Loaded config file", logger.String("path", l.v.ConfigFileUsed()))
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeInvalidConfig, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WatchLogLevel re-reads log.level whenever the config file changes and hands it to apply.
func (l *Loader) WatchLogLevel(apply func(level constants.LogLevel)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := l.v.GetString("log.level")
		l.log.Info(context.Background(), "Config file changed, applying log level",
			logger.String("file", e.Name),
			logger.String("level", level),
		)
		apply(constants.ParseLogLevel(level))
	})
	l.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", string(constants.DriverSQLite))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "prism-verify.db")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addresses", []string{})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.secret_path", "")
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_key", "hmac_key")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "certificate-verifications")
	v.SetDefault("kafka.write_timeout", "5s")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "1s")
	v.SetDefault("kafka.required_acks", 1)

	v.SetDefault("rate_limit.backend", string(constants.RateLimitBackendDatabase))
	v.SetDefault("rate_limit.window", constants.RateLimitWindow)
	v.SetDefault("rate_limit.threshold", constants.RateLimitThreshold)

	v.SetDefault("verification.hmac_key", "")
	v.SetDefault("verification.issuer_name", constants.IssuerName)
	v.SetDefault("verification.issuer_website", constants.IssuerWebsite)
	v.SetDefault("verification.support_contact", constants.DefaultSupportContact)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampling_rate", 1.0)
}

//Personal.AI order the ending
