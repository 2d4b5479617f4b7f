// Package config loads typed configuration from viper defaults, an
// optional YAML file, and environment variables (an optional .env file is
// loaded into the environment first), in that order of increasing
// precedence, the way the lineage's services have always done it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Environment string       `mapstructure:"environment"`
	LogLevel    string       `mapstructure:"log_level"`
	Server      ServerConfig `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig  `mapstructure:"redis"`
	JWT         JWTConfig    `mapstructure:"jwt"`
	AI          AIConfig     `mapstructure:"ai"`
	CORS        CORSConfig   `mapstructure:"cors"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	APIPrefix    string `mapstructure:"api_prefix"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	PoolMin         int    `mapstructure:"pool_min"`
	PoolMax         int    `mapstructure:"pool_max"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
	ConnectTimeout  int    `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration int    `mapstructure:"expiration"`
}

type AIConfig struct {
	ServiceURL  string `mapstructure:"service_url"`
	Timeout     int    `mapstructure:"timeout"`
	MaxRetries  int    `mapstructure:"max_retries"`
	RetryDelay  int    `mapstructure:"retry_delay"`
}

type CORSConfig struct {
	Origin string `mapstructure:"origin"`
}

// Load loads configuration from an optional .env file, an optional
// ./configs/config.yaml, and environment variables (highest precedence).
func Load() (*Config, error) {
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.api_prefix", "/api")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "moneyquest")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.pool_min", 2)
	viper.SetDefault("database.pool_max", 25)
	viper.SetDefault("database.idle_timeout", 300)
	viper.SetDefault("database.connect_timeout", 10)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("jwt.expiration", 604800) // 7 days, in seconds

	viper.SetDefault("ai.timeout", 30)
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("ai.retry_delay", 1)

	viper.SetDefault("cors.origin", "*")
}

func overrideFromEnv() {
	setStr := func(key, env string) {
		if v := os.Getenv(env); v != "" {
			viper.Set(key, v)
		}
	}
	setInt := func(key, env string) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				viper.Set(key, n)
			}
		}
	}

	setStr("database.host", "DB_HOST")
	setInt("database.port", "DB_PORT")
	setStr("database.user", "DB_USER")
	setStr("database.password", "DB_PASSWORD")
	setStr("database.name", "DB_DATABASE")
	setInt("database.pool_min", "DB_POOL_MIN")
	setInt("database.pool_max", "DB_POOL_MAX")
	setInt("database.idle_timeout", "DB_IDLE_TIMEOUT")
	setInt("database.connect_timeout", "DB_CONNECT_TIMEOUT")

	setStr("jwt.secret", "JWT_SECRET")
	setInt("jwt.expiration", "JWT_EXPIRATION")

	setStr("ai.service_url", "AI_SERVICE_URL")
	setInt("ai.timeout", "AI_SERVICE_TIMEOUT")
	setInt("ai.max_retries", "AI_SERVICE_MAX_RETRIES")
	setInt("ai.retry_delay", "AI_SERVICE_RETRY_DELAY")

	setInt("server.port", "PORT")
	setStr("server.api_prefix", "API_PREFIX")
	setStr("cors.origin", "CORS_ORIGIN")

	setStr("redis.host", "REDIS_HOST")
	setInt("redis.port", "REDIS_PORT")
	setStr("redis.password", "REDIS_PASSWORD")
	setInt("redis.db", "REDIS_DB")
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.Name == "") {
		return fmt.Errorf("database configuration is incomplete")
	}
	if cfg.AI.ServiceURL == "" {
		return fmt.Errorf("AI_SERVICE_URL is required")
	}
	return nil
}
