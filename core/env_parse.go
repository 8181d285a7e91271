package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment lookup helpers behind LoadConfig. godotenv loads .env into the
// process environment before LoadConfig runs, so these only ever read
// os.Getenv. A value that fails to parse falls back to the default; a typo
// in .env must not take the server down.

// GetEnvOrDefault returns the trimmed value of an environment variable, or
// the fallback when the variable is unset or blank.
func GetEnvOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// ParseIntEnv reads an integer-valued environment variable.
func ParseIntEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseInt64Env reads an int64-valued environment variable. Byte-size limits
// like MAX_FILE_SIZE need the wider type.
func ParseInt64Env(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseFloat64Env reads a float-valued environment variable, used for the
// truncation fractions.
func ParseFloat64Env(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// truthValues maps the accepted boolean spellings, checked case-insensitively.
var truthValues = map[string]bool{
	"true": true, "1": true, "yes": true, "on": true,
	"false": false, "0": false, "no": false, "off": false,
}

// ParseBoolEnv reads a boolean-valued environment variable. Accepts
// true/1/yes/on and false/0/no/off in any case.
func ParseBoolEnv(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	parsed, ok := truthValues[value]
	if !ok {
		return fallback
	}
	return parsed
}

// ParseDurationEnv reads a duration-valued environment variable. A bare
// number is taken as seconds, matching the *_SECONDS variable names; a Go
// duration string like "90s" or "2m" is also accepted.
func ParseDurationEnv(key string, fallbackSeconds int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(fallbackSeconds) * time.Second
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	return time.Duration(fallbackSeconds) * time.Second
}
