package app

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	APIBaseURL    string        // Required: base URL of the tanda-api (default: http://localhost:8080)
	StateFile     string        // Optional: path to the local state SQLite file
	LogFile       string        // Optional: log destination; stdout belongs to the TUI
	Env           string        // Environment (dev, staging, prod) (default: dev)
	LogLevel      string        // Log level (debug, info, warn, error) (default: info)
	LogFormat     string        // Log format (json, text) (default: json)
	ProbeInterval time.Duration // Connectivity probe interval (default: 30s)
}

func LoadConfig() Config {
	return Config{
		APIBaseURL:    getEnvOrDefault("TANDA_API_URL", "http://localhost:8080"),
		StateFile:     getEnvOrDefault("TANDA_STATE_FILE", defaultDataPath("state.db")),
		LogFile:       getEnvOrDefault("TANDA_LOG_FILE", defaultDataPath("tanda.log")),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
		ProbeInterval: getEnvDurationOrDefault("TANDA_PROBE_INTERVAL", 30*time.Second),
	}
}

// defaultDataPath places a file in the user's config directory, falling
// back to the working directory when none is resolvable.
func defaultDataPath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(base, "tanda", name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
