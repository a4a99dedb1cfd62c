package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/studyflash/internal/logger"
)

type Config struct {
	Addr                   string
	DBPath                 string
	LogLevel               string
	ProgressWorkerCount    int
	ProgressQueueSize      int
	PaceWindowDays         int
	DefaultTZOffsetMinutes int
	ActivityDays           int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// .env is optional outside development.
	_ = godotenv.Load()

	return Config{
		Addr:                   envOr("ADDR", ":8080"),
		DBPath:                 envOr("DB_PATH", "file:studyflash.db"),
		LogLevel:               envOr("LOG_LEVEL", "INFO"),
		ProgressWorkerCount:    envIntOr("PROGRESS_WORKER_COUNT", 2),
		ProgressQueueSize:      envIntOr("PROGRESS_QUEUE_SIZE", 64),
		PaceWindowDays:         envIntOr("PACE_WINDOW_DAYS", 7),
		DefaultTZOffsetMinutes: envIntOr("DEFAULT_TZ_OFFSET_MINUTES", 0),
		ActivityDays:           envIntOr("ACTIVITY_DAYS", 30),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.ProgressWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("PROGRESS_WORKER_COUNT must be at least 1 (got %d)", c.ProgressWorkerCount))
	}
	if c.ProgressQueueSize < 1 {
		errs = append(errs, fmt.Errorf("PROGRESS_QUEUE_SIZE must be at least 1 (got %d)", c.ProgressQueueSize))
	}
	if c.PaceWindowDays < 1 || c.PaceWindowDays > 365 {
		errs = append(errs, fmt.Errorf("PACE_WINDOW_DAYS must be between 1 and 365 (got %d)", c.PaceWindowDays))
	}
	if c.DefaultTZOffsetMinutes < -720 || c.DefaultTZOffsetMinutes > 840 {
		errs = append(errs, fmt.Errorf("DEFAULT_TZ_OFFSET_MINUTES must be between -720 and 840 (got %d)", c.DefaultTZOffsetMinutes))
	}
	if c.ActivityDays < 1 || c.ActivityDays > 366 {
		errs = append(errs, fmt.Errorf("ACTIVITY_DAYS must be between 1 and 366 (got %d)", c.ActivityDays))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
