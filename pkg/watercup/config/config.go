package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server. It maps 1:1 onto
// config.yaml and can be overridden per key through environment variables
// (SERVER_ADDRESS, DATABASE_REDIS_ADDRESS, ...).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig defines the HTTP server settings
type ServerConfig struct {
	Mode           string   `mapstructure:"mode"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig defines the store and change-channel settings
type DatabaseConfig struct {
	SqlitePath string      `mapstructure:"sqlitePath"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines the Redis connection used for change notifications.
// An empty address means "run without Redis" and falls back to the
// in-process notifier.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig defines identity-resolver settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwtSecret"`
	CodeTTL   time.Duration `mapstructure:"codeTTL"`
}

// Load finds and parses config.yaml, applying defaults and environment
// overrides. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.sqlitePath", "watercup.db")
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.codeTTL", 10*time.Minute)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
