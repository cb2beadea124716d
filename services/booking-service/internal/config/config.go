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
	Cache       Cache     `mapstructure:"cache"`
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

// JWT holds the shared signing secret used to verify tokens minted by
// user-service. booking-service never issues tokens itself.
type JWT struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// Cache controls the TTL of booking-service's own tenant settings cache,
// used by the admission engine's policy gates.
type Cache struct {
	SettingsTTL time.Duration `mapstructure:"settings_ttl"`
}

// Clients holds base URLs and timeout for synchronous calls to sibling services.
type Clients struct {
	TenantServiceURL   string        `mapstructure:"tenant_service_url"`
	UserServiceURL     string        `mapstructure:"user_service_url"`
	ResourceServiceURL string        `mapstructure:"resource_service_url"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
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
	viper.BindEnv("cache.settings_ttl", "CACHE_TTL_SETTINGS")
	viper.BindEnv("clients.tenant_service_url", "TENANT_SERVICE_URL")
	viper.BindEnv("clients.user_service_url", "USER_SERVICE_URL")
	viper.BindEnv("clients.resource_service_url", "RESOURCE_SERVICE_URL")
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

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("port", 8004)
	viper.SetDefault("log_level", "info")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "slotwise")
	viper.SetDefault("database.password", "slotwise_password")
	viper.SetDefault("database.name", "slotwise_bookings")
	viper.SetDefault("database.ssl_mode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")

	viper.SetDefault("jwt.secret", "your-super-secret-jwt-key-change-in-production")
	viper.SetDefault("jwt.issuer", "slotwise")

	viper.SetDefault("cache.settings_ttl", "5m")

	viper.SetDefault("clients.tenant_service_url", "http://localhost:8001")
	viper.SetDefault("clients.user_service_url", "http://localhost:8002")
	viper.SetDefault("clients.resource_service_url", "http://localhost:8003")
	viper.SetDefault("clients.request_timeout", "10s")

	viper.SetDefault("rate_limit.requests_per_minute", 1000)
	viper.SetDefault("rate_limit.burst_size", 100)
	viper.SetDefault("rate_limit.cleanup_interval", "1m")
}
