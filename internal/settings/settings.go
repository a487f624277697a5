// Package settings loads process settings from the environment and an
// optional .env file.
package settings

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ahrav/go-standings/internal/logging"
	"github.com/ahrav/go-standings/internal/ports"
)

// Settings is the process configuration shared by the commands.
type Settings struct {
	Log logging.Config

	// DatabaseURL selects the Postgres store. Empty means commands that
	// need a database fail with ports.ErrConfigNotFound.
	DatabaseURL string

	HTTPAddr string

	// SubmitRate is the sustained submissions per second allowed per
	// judge; SubmitBurst is the bucket size.
	SubmitRate  float64
	SubmitBurst int
}

// Load reads the named .env files, or ".env" when none are given, and then
// the environment. Missing files are ignored; variables already set in the
// environment win over file values.
func Load(files ...string) (Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	rate, err := getFloat("SUBMIT_RATE", 2)
	if err != nil {
		return Settings{}, err
	}
	burst, err := getInt("SUBMIT_BURST", 5)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Log: logging.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", logging.FormatJSON),
			FilePath:    getEnv("LOG_FILE", ""),
			ServiceName: "standings",
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		SubmitRate:  rate,
		SubmitBurst: burst,
	}, nil
}

// RequireDatabase returns the database URL or a ConfigError.
func (s Settings) RequireDatabase() (string, error) {
	if s.DatabaseURL == "" {
		return "", ports.NewConfigError("DATABASE_URL", ports.ErrConfigNotFound)
	}
	return s.DatabaseURL, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, ports.NewConfigError(key, fmt.Errorf("invalid number %q", raw))
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, ports.NewConfigError(key, fmt.Errorf("invalid integer %q", raw))
	}
	return v, nil
}
