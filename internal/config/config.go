package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the tracker service. Everything comes
// from the environment, optionally primed from a .env file.
type Config struct {
	// HTTP
	Addr string

	// Logging
	LogLevel  string
	LogFormat string

	// Currency code for every stored amount (single-currency tracker).
	Currency string

	// Storage backend selection: DatabaseURL wins, then SnapshotPath, then
	// a plain in-memory store.
	DatabaseURL  string
	SnapshotPath string

	// DefaultBillWallet is the wallet bill payments draw from when the
	// request names none.
	DefaultBillWallet string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Addr:              getEnv("ADDR", ":8080"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		Currency:          strings.ToUpper(getEnv("CURRENCY", "INR")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SnapshotPath:      getEnv("SNAPSHOT_PATH", ""),
		DefaultBillWallet: getEnv("BILL_WALLET", "Bank"),
	}
}

// Validate reports configuration problems in one pass.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "ADDR must not be empty")
	}
	if len(c.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("CURRENCY must be a 3-letter ISO code, got %q", c.Currency))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
