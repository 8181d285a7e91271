// Package core provides configuration loading and shared primitives for the
// foresight appendix generation backend.
package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifiers for the AI gateway.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration values.
type Config struct {
	// AI provider configuration. The API key may be empty at startup: the
	// web boundary accepts a key at runtime and validates it with a probe
	// call before the pipeline leaves the AwaitingCredential stage.
	Provider        string // "gemini" (default) or "openai"
	GeminiAPIKey    string
	OpenAIAPIKey    string
	BaseLLMURL      string // optional OpenAI-compatible endpoint override
	PrimaryModel    string
	FallbackModel   string
	Temperature     float64
	MaxOutputTokens int

	// Extraction limits
	MaxFileSize         int64 // hard cap, uploads above this are rejected
	SoftFileSize        int64 // soft cap, uploads above this carry a warning
	MinExtractableChars int   // below this the PDF is treated as image-only

	// Truncation policy
	MaxCorpusChars int
	HeadFraction   float64
	TailFraction   float64

	// Gateway retry policy
	MaxRetries int
	RetryDelay time.Duration

	// Call timeouts
	AnalysisTimeout   time.Duration
	GenerationTimeout time.Duration

	// Generation defaults
	TimeHorizon string
	WordCount   string

	// Web UI
	Port          int
	Host          string
	WebUIPassword string
	SessionTTL    time.Duration

	// Logging
	LogFilePath string
	DevMode     bool
}

// LoadConfig reads configuration from environment variables, applying the
// optional config.yaml overlay for pipeline tuning knobs. Environment
// variables win over the yaml file; both fall back to defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Provider:        GetEnvOrDefault("AI_PROVIDER", ProviderGemini),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseLLMURL:      os.Getenv("BASE_LLM_URL"),
		PrimaryModel:    GetEnvOrDefault("PRIMARY_MODEL", "gemini-2.5-pro"),
		FallbackModel:   GetEnvOrDefault("FALLBACK_MODEL", "gemini-2.5-flash"),
		Temperature:     ParseFloat64Env("AI_TEMPERATURE", 0.7),
		MaxOutputTokens: ParseIntEnv("AI_MAX_OUTPUT_TOKENS", 8192),

		MaxFileSize:         ParseInt64Env("MAX_FILE_SIZE", 100*1024*1024),
		SoftFileSize:        ParseInt64Env("SOFT_FILE_SIZE", 50*1024*1024),
		MinExtractableChars: ParseIntEnv("MIN_EXTRACTABLE_CHARS", 100),

		MaxCorpusChars: ParseIntEnv("MAX_CORPUS_CHARS", 500000),
		HeadFraction:   ParseFloat64Env("CORPUS_HEAD_FRACTION", 0.4),
		TailFraction:   ParseFloat64Env("CORPUS_TAIL_FRACTION", 0.2),

		MaxRetries: ParseIntEnv("MAX_RETRIES", 3),
		RetryDelay: ParseDurationEnv("RETRY_DELAY_SECONDS", 2),

		AnalysisTimeout:   ParseDurationEnv("ANALYSIS_TIMEOUT_SECONDS", 60),
		GenerationTimeout: ParseDurationEnv("GENERATION_TIMEOUT_SECONDS", 120),

		TimeHorizon: GetEnvOrDefault("TIME_HORIZON", "2040-2050"),
		WordCount:   GetEnvOrDefault("WORD_COUNT", "2500-3500"),

		Port:          ParseIntEnv("PORT", 3000),
		Host:          GetEnvOrDefault("HOST", "localhost"),
		WebUIPassword: os.Getenv("WEBUI_PWD"),
		SessionTTL:    ParseDurationEnv("SESSION_TTL_SECONDS", 24*60*60),

		LogFilePath: GetEnvOrDefault("LOG_FILE", "app.log"),
		DevMode:     ParseBoolEnv("DEV_MODE", false),
	}

	if path := GetEnvOrDefault("CONFIG_FILE", "config.yaml"); path != "" {
		if err := applyYAMLOverlay(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// yamlOverlay mirrors the tunable subset of Config exposed through config.yaml.
// Pointer fields distinguish "absent" from zero values.
type yamlOverlay struct {
	Pipeline struct {
		MaxCorpusChars *int     `yaml:"max_corpus_chars"`
		HeadFraction   *float64 `yaml:"head_fraction"`
		TailFraction   *float64 `yaml:"tail_fraction"`
		MaxRetries     *int     `yaml:"max_retries"`
		RetryDelaySec  *int     `yaml:"retry_delay_seconds"`
		AnalysisSec    *int     `yaml:"analysis_timeout_seconds"`
		GenerationSec  *int     `yaml:"generation_timeout_seconds"`
	} `yaml:"pipeline"`
	Models struct {
		Primary  *string `yaml:"primary"`
		Fallback *string `yaml:"fallback"`
	} `yaml:"models"`
}

// applyYAMLOverlay merges config.yaml values into cfg. A missing file is not
// an error; a malformed one is.
func applyYAMLOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var overlay yamlOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	p := overlay.Pipeline
	if p.MaxCorpusChars != nil {
		cfg.MaxCorpusChars = *p.MaxCorpusChars
	}
	if p.HeadFraction != nil {
		cfg.HeadFraction = *p.HeadFraction
	}
	if p.TailFraction != nil {
		cfg.TailFraction = *p.TailFraction
	}
	if p.MaxRetries != nil {
		cfg.MaxRetries = *p.MaxRetries
	}
	if p.RetryDelaySec != nil {
		cfg.RetryDelay = time.Duration(*p.RetryDelaySec) * time.Second
	}
	if p.AnalysisSec != nil {
		cfg.AnalysisTimeout = time.Duration(*p.AnalysisSec) * time.Second
	}
	if p.GenerationSec != nil {
		cfg.GenerationTimeout = time.Duration(*p.GenerationSec) * time.Second
	}
	if overlay.Models.Primary != nil {
		cfg.PrimaryModel = *overlay.Models.Primary
	}
	if overlay.Models.Fallback != nil {
		cfg.FallbackModel = *overlay.Models.Fallback
	}
	return nil
}

func (c *Config) validate() error {
	if c.Provider != ProviderGemini && c.Provider != ProviderOpenAI {
		return ErrInvalidProvider(c.Provider)
	}
	if c.HeadFraction < 0 || c.TailFraction < 0 || c.HeadFraction+c.TailFraction > 1.0 {
		return ErrInvalidFractions(c.HeadFraction, c.TailFraction)
	}
	if c.MaxCorpusChars <= 0 {
		return ErrMissingConfig("MAX_CORPUS_CHARS")
	}
	if c.MaxFileSize <= 0 {
		return ErrMissingConfig("MAX_FILE_SIZE")
	}
	return nil
}

// APIKey returns the configured key for the active provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}
