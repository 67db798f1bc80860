package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds everything the storefront reads from the environment.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDriver    string
	DatabaseDSN string

	JWTSecret string

	RedisAddr       string
	ProductCacheTTL time.Duration

	RabbitMQURL string

	PaymentProvider      string
	StripeSecretKey      string
	StripePublishableKey string
	StripeAPIURL         string
	PaymentTimeout       time.Duration

	TaxRate         decimal.Decimal
	CatalogPageSize int
	SearchLimit     int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "shop.db")
	v.SetDefault("JWT_SECRET", "dev")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("PRODUCT_CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PAYMENT_PROVIDER", "fake")
	v.SetDefault("STRIPE_SECRET_KEY", "dev")
	v.SetDefault("STRIPE_PUBLISHABLE_KEY", "dev")
	v.SetDefault("STRIPE_API_URL", "https://api.stripe.com")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("TAX_RATE", "0.06")
	v.SetDefault("CATALOG_PAGE_SIZE", 8)
	v.SetDefault("SEARCH_LIMIT", 6)
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	taxRate, err := decimal.NewFromString(v.GetString("TAX_RATE"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TAX_RATE %q: %w", v.GetString("TAX_RATE"), err)
	}
	if taxRate.IsNegative() {
		return Config{}, fmt.Errorf("TAX_RATE must not be negative, got %s", taxRate)
	}

	cfg := Config{
		AppPort:              v.GetString("APP_PORT"),
		AppEnv:               v.GetString("APP_ENV"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		ProductCacheTTL:      v.GetDuration("PRODUCT_CACHE_TTL"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		PaymentProvider:      v.GetString("PAYMENT_PROVIDER"),
		StripeSecretKey:      v.GetString("STRIPE_SECRET_KEY"),
		StripePublishableKey: v.GetString("STRIPE_PUBLISHABLE_KEY"),
		StripeAPIURL:         v.GetString("STRIPE_API_URL"),
		PaymentTimeout:       v.GetDuration("PAYMENT_TIMEOUT"),
		TaxRate:              taxRate,
		CatalogPageSize:      v.GetInt("CATALOG_PAGE_SIZE"),
		SearchLimit:          v.GetInt("SEARCH_LIMIT"),
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.PaymentProvider {
	case "fake", "stripe":
	default:
		return Config{}, fmt.Errorf("unsupported PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
	if cfg.CatalogPageSize <= 0 {
		return Config{}, fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", cfg.CatalogPageSize)
	}
	if cfg.SearchLimit <= 0 {
		return Config{}, fmt.Errorf("SEARCH_LIMIT must be positive, got %d", cfg.SearchLimit)
	}
	return cfg, nil
}
