package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidProvider  = "INVALID_PROVIDER"
	ErrCodeInvalidFractions = "INVALID_FRACTIONS"
	ErrCodeMissingAuth      = "MISSING_AUTH"
	ErrCodeMissingConfig    = "MISSING_CONFIG"
)

// ErrInvalidProvider returns an error for an unrecognized AI provider name.
func ErrInvalidProvider(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProvider,
		Message: fmt.Sprintf("Unknown AI provider '%s'", name),
		Action:  "Set AI_PROVIDER to 'gemini' or 'openai' in your .env file",
	}
}

// ErrInvalidFractions returns an error for an impossible truncation split.
func ErrInvalidFractions(head, tail float64) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidFractions,
		Message: fmt.Sprintf("Invalid truncation fractions head=%.2f tail=%.2f", head, tail),
		Action:  "CORPUS_HEAD_FRACTION and CORPUS_TAIL_FRACTION must be non-negative and sum to at most 1.0",
	}
}

// ErrMissingAuth returns an error for missing authentication credentials.
func ErrMissingAuth(provider string) *ConfigError {
	var action string
	switch provider {
	case ProviderGemini:
		action = "Set GEMINI_API_KEY in your .env file or submit a key through the web UI"
	case ProviderOpenAI:
		action = "Set OPENAI_API_KEY in your .env file or submit a key through the web UI"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", provider)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing API credentials for %s", provider),
		Action:  action,
	}
}

// ErrMissingConfig returns an error for missing required configuration.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}
