package gateway

import (
	"context"
)

// CallConfig carries per-call generation settings.
type CallConfig struct {
	// Model is the model identifier to use for this call.
	Model string

	// Temperature controls response randomness (0.0-1.0).
	Temperature float32

	// MaxOutputTokens caps the response length.
	MaxOutputTokens int
}

// Provider is the minimal surface the gateway needs from an AI backend:
// one prompt in, one completion out. Implementations must return errors
// already classified as *Error so the retry policy can act on them.
//
// Tests inject fake providers through this interface; the real
// implementations are OpenAIProvider and GeminiProvider.
type Provider interface {
	// Complete sends a prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string, cfg CallConfig) (string, error)

	// Name identifies the provider in logs.
	Name() string
}
