package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string    `mapstructure:"environment"`
	Port        int       `mapstructure:"port"`
	LogLevel    string    `mapstructure:"log_level"`
	Database    Database  `mapstructure:"database"`
	Redis       Redis     `mapstructure:"redis"`
	NATS        NATS      `mapstructure:"nats"`
	JWT         JWT       `mapstructure:"jwt"`
	Clients     Clients   `mapstructure:"clients"`
	RateLimit   RateLimit `mapstructure:"rate_limit"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATS struct {
	URL string `mapstructure:"url"`
}

// JWT holds user-service's signing configuration. user-service is the
// sole issuer of access tokens in the system; algorithm and expiry are
// configuration per spec.md §6.
type JWT struct {
	Secret                 string        `mapstructure:"secret"`
	Algorithm              string        `mapstructure:"algorithm"`
	AccessTokenExpireHours int           `mapstructure:"access_token_expire_hours"`
	AccessTokenTTL         time.Duration `mapstructure:"-"`
}

// Clients holds base URLs for synchronous calls to sibling services.
type Clients struct {
	TenantServiceURL string        `mapstructure:"tenant_service_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

type RateLimit struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BurstSize         int           `mapstructure:"burst_size"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("nats.url", "NATS_URL")
	viper.BindEnv("jwt.secret", "SECRET_KEY")
	viper.BindEnv("jwt.algorithm", "JWT_ALGORITHM")
	viper.BindEnv("jwt.access_token_expire_hours", "ACCESS_TOKEN_EXPIRE_HOURS")
	viper.BindEnv("clients.tenant_service_url", "TENANT_SERVICE_URL")
	viper.BindEnv("environment", "ENVIRONMENT")
	viper.BindEnv("log_level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.JWT.AccessTokenTTL = time.Duration(config.JWT.AccessTokenExpireHours) * time.Hour

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("port", 8002)
	viper.SetDefault("log_level", "info")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "slotwise")
	viper.SetDefault("database.password", "slotwise_password")
	viper.SetDefault("database.name", "slotwise_users")
	viper.SetDefault("database.ssl_mode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")

	viper.SetDefault("jwt.secret", "your-super-secret-jwt-key-change-in-production")
	viper.SetDefault("jwt.algorithm", "HS256")
	viper.SetDefault("jwt.access_token_expire_hours", 24)

	viper.SetDefault("clients.tenant_service_url", "http://localhost:8001")
	viper.SetDefault("clients.request_timeout", "10s")

	viper.SetDefault("rate_limit.requests_per_minute", 1000)
	viper.SetDefault("rate_limit.burst_size", 100)
	viper.SetDefault("rate_limit.cleanup_interval", "1m")
}
