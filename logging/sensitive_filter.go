package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns contains compiled regex patterns for detecting sensitive
// data. Compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI API keys: sk-... (legacy) or sk-proj-... (project-scoped)
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	// Google AI Studio / Gemini API keys
	regexp.MustCompile(`(?i)(AIza[a-zA-Z0-9_-]{35})`),
	// Bearer tokens
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),

	// Generic secret assignments
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveEnvVarPrefixes are environment variable name prefixes that
// indicate sensitive values.
var sensitiveEnvVarPrefixes = []string{
	"GEMINI_API_KEY",
	"OPENAI_API_KEY",
	"WEBUI_PWD",
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
}

// RedactSensitiveData scans a string value and redacts any detected
// sensitive data. This is a pure function.
func RedactSensitiveData(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveEnvVar reports whether an environment variable name looks like
// it holds a secret and should never be logged verbatim.
func IsSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range sensitiveEnvVarPrefixes {
		if strings.Contains(upper, prefix) {
			return true
		}
	}
	return false
}
