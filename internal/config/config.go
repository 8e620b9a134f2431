// Package config holds the runtime configuration, loaded from the
// environment with an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the application configuration.
type Config struct {
	// Port the API listens on.
	Port string

	// DBFile is the path of the local SQLite database.
	DBFile string

	// RemoteDSN is the Postgres DSN of the shared remote store. An
	// empty value disables sync entirely.
	RemoteDSN string

	// SyncInterval is how often the sync worker reconciles on its
	// own, independent of nudges.
	SyncInterval time.Duration

	// CORSAllowOrigins are glob patterns for allowed CORS origins.
	CORSAllowOrigins []string

	// EnablePprof mounts the pprof endpoints when set.
	EnablePprof bool
}

// Load reads the configuration from the environment. A .env file in
// the working directory is loaded first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	config := Config{
		Port:      getEnv("PORT", "8080"),
		DBFile:    getEnv("FINANZAS_DB", "data/finanzas.db"),
		RemoteDSN: getEnv("REMOTE_DB_DSN", ""),
	}

	interval := getEnv("SYNC_INTERVAL", "5m")
	duration, err := time.ParseDuration(interval)
	if err != nil {
		log.Warn().Str("value", interval).Msg("invalid SYNC_INTERVAL, falling back to 5m")
		duration = 5 * time.Minute
	}
	config.SyncInterval = duration

	origins := getEnv("CORS_ALLOW_ORIGINS", "*")
	for _, origin := range strings.Split(origins, " ") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.CORSAllowOrigins = append(config.CORSAllowOrigins, origin)
		}
	}

	pprof, err := strconv.ParseBool(getEnv("ENABLE_PPROF", "false"))
	if err != nil {
		log.Warn().Msg("invalid ENABLE_PPROF, assuming false")
		pprof = false
	}
	config.EnablePprof = pprof

	return config
}

// getEnv retrieves an environment variable or returns a default
// value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
