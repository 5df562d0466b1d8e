package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	Port        string `mapstructure:"PORT"`

	PostgresDSN        string `mapstructure:"POSTGRES_DSN"`
	PostgresMaxConns   int    `mapstructure:"POSTGRES_MAX_CONNS"`
	PostgresIdleConns  int    `mapstructure:"POSTGRES_IDLE_CONNS"`
	PostgresConnMaxAge int    `mapstructure:"POSTGRES_CONN_MAX_AGE_MINUTES"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	OrderCancelRestock bool `mapstructure:"ORDER_CANCEL_RESTOCK"`

	CheckoutRateLimitPerMinute int    `mapstructure:"CHECKOUT_RATE_LIMIT_PER_MINUTE"`
	RedisAddr                  string `mapstructure:"REDIS_ADDR"`
	RedisPassword              string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                    int    `mapstructure:"REDIS_DB"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	CartTTLHours int `mapstructure:"CART_TTL_HOURS"`

	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

var defaults = map[string]any{
	"SERVICE_NAME":                   "storefront-api",
	"ENVIRONMENT":                    "local",
	"LOG_LEVEL":                      "info",
	"LOG_FORMAT":                     "json",
	"PORT":                           "8080",
	"POSTGRES_DSN":                   "",
	"POSTGRES_MAX_CONNS":             20,
	"POSTGRES_IDLE_CONNS":            5,
	"POSTGRES_CONN_MAX_AGE_MINUTES":  30,
	"JWT_SECRET":                     "",
	"JWT_TTL_HOURS":                  24,
	"ADMIN_USERNAME":                 "",
	"ADMIN_PASSWORD":                 "",
	"ORDER_CANCEL_RESTOCK":           false,
	"CHECKOUT_RATE_LIMIT_PER_MINUTE": 10,
	"REDIS_ADDR":                     "",
	"REDIS_PASSWORD":                 "",
	"REDIS_DB":                       0,
	"KAFKA_BROKERS":                  "",
	"KAFKA_ORDER_TOPIC":              "storefront.orders",
	"CART_TTL_HOURS":                 24 * 30,
	"SHUTDOWN_TIMEOUT_SECONDS":       10,
}

// LoadConfig reads environment variables, optionally layered over a .env
// file named by CONFIG_FILE, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if c.JWTTTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be a positive integer")
	}
	if c.CheckoutRateLimitPerMinute < 0 {
		return errors.New("CHECKOUT_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.CartTTLHours <= 0 {
		return errors.New("CART_TTL_HOURS must be a positive integer")
	}
	if c.KafkaBrokers != "" && strings.TrimSpace(c.KafkaOrderTopic) == "" {
		return errors.New("KAFKA_ORDER_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// JWTTTL is the lifetime of issued bearer tokens.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// CartTTL is how long an untouched cart item survives the purger.
func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// ShutdownTimeout bounds graceful shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Brokers splits KAFKA_BROKERS on commas.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
