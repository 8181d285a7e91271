package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "configured")
	if got := GetEnvOrDefault("TEST_STRING_VAR", "fallback"); got != "configured" {
		t.Errorf("expected configured value, got %q", got)
	}
	if got := GetEnvOrDefault("TEST_UNSET_VAR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}

	t.Setenv("TEST_PADDED_VAR", "  padded value  ")
	if got := GetEnvOrDefault("TEST_PADDED_VAR", "fallback"); got != "padded value" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	t.Setenv("TEST_BLANK_VAR", "   ")
	if got := GetEnvOrDefault("TEST_BLANK_VAR", "fallback"); got != "fallback" {
		t.Errorf("blank values must fall back, got %q", got)
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"valid", "42", 7, 42},
		{"negative", "-3", 7, -3},
		{"not a number", "abc", 7, 7},
		{"empty", "", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_INT_VAR", tt.value)
			}
			if got := ParseIntEnv("TEST_INT_VAR", tt.def); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseInt64Env(t *testing.T) {
	t.Setenv("TEST_INT64_VAR", "104857600")
	if got := ParseInt64Env("TEST_INT64_VAR", 1); got != 104857600 {
		t.Errorf("got %d", got)
	}
}

func TestParseFloat64Env(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "0.4")
	if got := ParseFloat64Env("TEST_FLOAT_VAR", 0.1); got != 0.4 {
		t.Errorf("got %f", got)
	}
	if got := ParseFloat64Env("TEST_FLOAT_UNSET", 0.1); got != 0.1 {
		t.Errorf("got %f", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"garbage", true, true},
		{"garbage", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.value)
			if got := ParseBoolEnv("TEST_BOOL_VAR", tt.def); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  time.Duration
	}{
		{"bare seconds", "90", 30, 90 * time.Second},
		{"duration string", "2m", 30, 2 * time.Minute},
		{"compound duration", "1h30m", 30, 90 * time.Minute},
		{"garbage", "soon", 30, 30 * time.Second},
		{"unset", "", 30, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_DURATION_VAR", tt.value)
			}
			if got := ParseDurationEnv("TEST_DURATION_VAR", tt.def); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
