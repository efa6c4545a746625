package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ExchangeRateAPIKey string

	Sites     []string
	Category  string
	PageLimit int

	CSVOutputPath string
	SkipPostgres  bool

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
// It fails when EXCHANGERATE_API_KEY is not set — the currency snapshot
// cannot be fetched without it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	apiKey := os.Getenv("EXCHANGERATE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("config: EXCHANGERATE_API_KEY is required")
	}

	return &Config{
		ExchangeRateAPIKey: apiKey,

		Sites:     splitList(getEnv("SITES", "MLA")),
		Category:  getEnv("CATEGORY", "1055"),
		PageLimit: getEnvInt("PAGE_LIMIT", 1),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/listings.csv"),
		SkipPostgres:  getEnv("SKIP_POSTGRES", "") == "true",

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "meli"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "meli123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// splitList turns a comma-separated site list into a slice; a single
// site id without commas yields a one-element slice.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
