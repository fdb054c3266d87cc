package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/trackops/riskregistry/pkg/constants"
	"github.com/trackops/riskregistry/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables. The
// viper instance is returned so callers can watch the file for changes.
func LoadConfig(log logger.Logger) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/riskregistry/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, err
		}
		log.Warn(context.Background(), "No config file found, using defaults and environment")
	}

	v.SetEnvPrefix("RISKREG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// WatchLogLevel reloads the log level when the config file changes on disk.
// Only the log level is applied at runtime; other settings require a restart.
func WatchLogLevel(v *viper.Viper, log logger.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		log.Info(context.Background(), "Config file changed, applying log level",
			logger.String("file", e.Name),
			logger.String("level", level),
		)
		log.SetLevel(constants.LogLevel(level))
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "riskregistry")
	v.SetDefault("database.database", "riskregistry")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.heatmap_ttl_seconds", 30)

	v.SetDefault("scoring.recalc_workers", 8)
	v.SetDefault("scoring.appetite_cache_ttl_seconds", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", constants.ServiceName)
}
