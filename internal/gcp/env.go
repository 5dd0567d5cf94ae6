package gcp

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv is a helper to read an environment variable or return a default value.
// Blank values count as unset.
func GetEnv(key, fallback string) string {
	if value, ok := lookupTrimmed(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer variable. Unparsable values are logged and ignored.
func GetEnvInt(key string, fallback int) int {
	raw, ok := lookupTrimmed(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring invalid integer environment variable", "key", key, "value", raw)
		return fallback
	}
	return n
}

// GetEnvFloat reads a float variable. Unparsable values are logged and ignored.
func GetEnvFloat(key string, fallback float32) float32 {
	raw, ok := lookupTrimmed(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		slog.Warn("Ignoring invalid float environment variable", "key", key, "value", raw)
		return fallback
	}
	return float32(f)
}

// GetEnvDuration reads a Go duration string such as "90s" or "2m".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := lookupTrimmed(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Ignoring invalid duration environment variable", "key", key, "value", raw)
		return fallback
	}
	return d
}

// GetEnvBool reads a boolean variable ("true", "1", "false", "0", ...).
func GetEnvBool(key string, fallback bool) bool {
	raw, ok := lookupTrimmed(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Ignoring invalid boolean environment variable", "key", key, "value", raw)
		return fallback
	}
	return b
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
