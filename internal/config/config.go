package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir               string
	GrammarPackPath       string // optional TOML pack overriding the embedded default
	LogLevel              string
	Port                  int
	DevMode               bool
	CorpusRefreshSchedule string // cron expression with seconds field
	HealthCheckSchedule   string
	SeedCorpus            bool // insert the training tablets on first start
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnvAsInt("GO_PORT", 8080),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		DataDir:               getEnv("DATA_DIR", "./data"),
		GrammarPackPath:       getEnv("GRAMMAR_PACK", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CorpusRefreshSchedule: getEnv("CORPUS_REFRESH_SCHEDULE", "0 0 * * * *"),
		HealthCheckSchedule:   getEnv("HEALTH_CHECK_SCHEDULE", "0 */15 * * * *"),
		SeedCorpus:            getEnvAsBool("SEED_CORPUS", true),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be a valid port number, got %d", c.Port)
	}

	return nil
}

// CatalogDBPath returns the path of the sign catalog database
func (c *Config) CatalogDBPath() string {
	return c.DataDir + "/catalog.db"
}

// CorpusDBPath returns the path of the corpus database
func (c *Config) CorpusDBPath() string {
	return c.DataDir + "/corpus.db"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
