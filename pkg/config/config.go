package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Connection pool bounds of the visit store
const (
	PoolMinConns = 1
	PoolMaxConns = 10
)

// Supported DB_DRIVER values
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
)

type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseURL string // sqlite / libsql DSN
	DBUser      string
	DBPassword  string
	DBName      string
	DBHost      string
	DBPort      string
	DBSSLMode   string

	CORSAllowedOrigins []string

	// AnalyticsSnapshot reads the whole report inside one read-only transaction
	AnalyticsSnapshot bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8000"),
		AppEnv:             getEnv("APP_ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL:        getEnv("DATABASE_URL", "file:cv_analytics.sqlite"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "postgres"),
		DBHost:             getEnv("DB_HOST", "postgres17"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "https://devapis.cloud,http://localhost:8000,http://localhost")),
		AnalyticsSnapshot:  getBool("ANALYTICS_SNAPSHOT", false),
	}
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.PostgresDSN()
	}
	return c.DatabaseURL
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
