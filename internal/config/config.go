package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Typed environment lookups with defaults. Parse failures fall back to
// the default and are logged rather than returned; env overrides are a
// convenience layer, not the source of truth.

// GetStringFromEnv retrieves a string value from the environment.
// If the key does not exist, it returns the default value.
func GetStringFromEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetIntFromEnv retrieves an integer value from the environment.
func GetIntFromEnv(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.With("key", key, "value", value, "error", err).Warn("invalid integer in environment, using default")
		return defaultValue
	}
	return parsed
}

// GetDurationFromEnv retrieves a duration from the environment. The value
// must be in time.ParseDuration format, like "500ms" or "2m30s".
func GetDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		slog.With("key", key, "value", value, "error", err).Warn("invalid duration in environment, using default")
		return defaultValue
	}
	return parsed
}

// GetFloatFromEnv retrieves a float value from the environment.
func GetFloatFromEnv(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.With("key", key, "value", value, "error", err).Warn("invalid float in environment, using default")
		return defaultValue
	}
	return parsed
}

// GetBoolFromEnv retrieves a boolean value from the environment.
func GetBoolFromEnv(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.With("key", key, "value", value, "error", err).Warn("invalid boolean in environment, using default")
		return defaultValue
	}
	return parsed
}
