package gateway

import (
	"context"

	"foresight_backend/core"

	"go.uber.org/zap"
)

// NewProviderFromConfig builds the configured provider for an API key. The
// key may come from configuration or from the runtime credential endpoint;
// the boundary validates it with ValidateCredential before use.
func NewProviderFromConfig(ctx context.Context, cfg *core.Config, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, NewError(KindInvalidCredential, "no API key supplied", core.ErrMissingAuth(cfg.Provider))
	}
	switch cfg.Provider {
	case core.ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.BaseLLMURL), nil
	default:
		return NewGeminiProvider(ctx, apiKey)
	}
}

// NewClientFromConfig wires a provider into a Client using the configured
// models, generation defaults, and retry budget.
func NewClientFromConfig(provider Provider, cfg *core.Config, logger *zap.Logger) *Client {
	return NewClient(provider, ClientConfig{
		PrimaryModel:    cfg.PrimaryModel,
		FallbackModel:   cfg.FallbackModel,
		Temperature:     float32(cfg.Temperature),
		MaxOutputTokens: cfg.MaxOutputTokens,
		Policy:          PolicyWithBudget(cfg.MaxRetries, cfg.RetryDelay),
		Logger:          logger,
	})
}
