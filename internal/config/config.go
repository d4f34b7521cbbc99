package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Payroll defaults, used when no finalized payroll or stored setting
	// exists for a driver/period.
	DriverBaseSalary     decimal.Decimal
	DriverCommissionRate decimal.Decimal
	CommissionMode       string

	// Summary cache
	SummaryCacheTTL time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taxigest"),
		DBPassword: getEnv("DB_PASSWORD", "taxigest"),
		DBName:     getEnv("DB_NAME", "taxigest"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		CommissionMode: getEnv("COMMISSION_MODE", "gross"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	config.DriverBaseSalary = getDecimalEnv("DRIVER_BASE_SALARY", "1400")
	config.DriverCommissionRate = getDecimalEnv("DRIVER_COMMISSION_RATE", "0.35")

	ttlStr := getEnv("SUMMARY_CACHE_TTL", "1m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Printf("Warning: invalid SUMMARY_CACHE_TTL value '%s', falling back to 1m\n", ttlStr)
		ttl = time.Minute
	}
	config.SummaryCacheTTL = ttl

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDecimalEnv retrieves a decimal environment variable, falling back to the
// default when unset or unparsable.
func getDecimalEnv(key, defaultValue string) decimal.Decimal {
	raw := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		d, _ = decimal.NewFromString(defaultValue)
	}
	return d
}
