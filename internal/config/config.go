// Package config reads storefront settings from the environment. A .env
// file in the working directory, when present, seeds variables that are
// not already set.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"FirstShop/internal/pricing"
	"FirstShop/internal/storage"
)

type Config struct {
	Port     string
	LogLevel string

	CatalogSource string

	Storage storage.Options

	Pricing pricing.Rules

	OrderDelay     time.Duration
	OrderRateLimit int
	OrderRateWin   time.Duration

	MetricsEnabled bool
	MetricsToken   string
}

// Load reads .env files (if any) and then the environment. Values that do
// not parse fall back to their defaults.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	rules := pricing.DefaultRules()

	return Config{
		Port:          getenv("PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		CatalogSource: getenv("CATALOG_SOURCE", "data/products.json"),

		Storage: storage.Options{
			Driver:        getenv("STORAGE_DRIVER", storage.DriverMemory),
			Prefix:        getenv("STORAGE_PREFIX", "firstshop:"),
			Tab:           getenv("TAB_ID", uuid.NewString()),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getint("REDIS_DB", 0),
			PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		},

		Pricing: pricing.Rules{
			FreeShippingThreshold: getdecimal("FREE_SHIPPING_THRESHOLD", rules.FreeShippingThreshold),
			ShippingFee:           getdecimal("SHIPPING_FEE", rules.ShippingFee),
			TaxRate:               getdecimal("TAX_RATE", rules.TaxRate),
		},

		OrderDelay:     getduration("ORDER_DELAY", 2*time.Second),
		OrderRateLimit: getint("ORDER_RATE_LIMIT", 10),
		OrderRateWin:   getduration("ORDER_RATE_WINDOW", time.Minute),

		MetricsEnabled: getbool("METRICS_ENABLED", true),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getbool(k string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return b
}

func getduration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d < 0 {
		return def
	}
	return d
}

func getdecimal(k string, def decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(os.Getenv(k))
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}
