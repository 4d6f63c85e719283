package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DataDir        string
	StorageBackend string
	StoragePath    string
	LogLevel       string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:           envOr("ADDR", ":8080"),
		DataDir:        envOr("DATA_DIR", "data"),
		StorageBackend: envOr("STORAGE_BACKEND", "sqlite"),
		StoragePath:    envOr("STORAGE_PATH", "cisspprep.db"),
		LogLevel:       envOr("LOG_LEVEL", "INFO"),
	}
}

// Validate checks the configuration, collecting every problem into one error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "DATA_DIR cannot be empty")
	}
	switch c.StorageBackend {
	case "memory", "file", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND must be one of memory, file, sqlite (got %q)", c.StorageBackend))
	}
	if c.StorageBackend != "memory" && c.StoragePath == "" {
		problems = append(problems, "STORAGE_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN, or ERROR (got %q)", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
