package gateway

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// probePrompt is the lightweight credential validation call. The response is
// checked for the word "valid" rather than parsed, so any model that can
// echo a sentence passes.
const probePrompt = "Say 'API key valid' and nothing else."

// ClientConfig holds construction-time settings for a gateway Client.
type ClientConfig struct {
	// PrimaryModel is the model used for all calls.
	PrimaryModel string

	// FallbackModel is tried once when the primary is unavailable.
	FallbackModel string

	// Temperature and MaxOutputTokens are the per-call generation defaults.
	Temperature     float32
	MaxOutputTokens int

	// Policy is the retry policy table; nil uses DefaultPolicy.
	Policy Policy

	// Logger for retry/fallback visibility; nil uses a no-op logger.
	Logger *zap.Logger
}

// Client is the retrying AI gateway. It owns the retry/fallback policy and
// the structured-payload parsing; callers see either a usable result or a
// classified *Error.
//
// The client keeps no call state and is safe for use by a single session's
// orchestrator, which serializes calls itself.
type Client struct {
	provider      Provider
	primaryModel  string
	fallbackModel string
	temperature   float32
	maxTokens     int
	policy        Policy
	logger        *zap.Logger
}

// NewClient creates a Client over the given provider.
func NewClient(provider Provider, cfg ClientConfig) *Client {
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		provider:      provider,
		primaryModel:  cfg.PrimaryModel,
		fallbackModel: cfg.FallbackModel,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxOutputTokens,
		policy:        policy,
		logger:        logger,
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Model returns the primary model identifier.
func (c *Client) Model() string {
	return c.primaryModel
}

// CallText sends a free-text generation call and returns the raw response.
// The timeout bounds each individual attempt, not the whole retry loop.
func (c *Client) CallText(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	return c.call(ctx, prompt, timeout, nil)
}

// CallStructured sends a structured call and unmarshals the required JSON
// payload into v. A response that fails schema parsing is classified as
// MalformedResponse and retried per the policy (exactly once by default).
func (c *Client) CallStructured(ctx context.Context, prompt string, timeout time.Duration, v interface{}) error {
	_, err := c.call(ctx, prompt, timeout, v)
	return err
}

// call runs the retry/fallback loop around a provider completion. When v is
// non-nil the structured decode happens inside the loop so that schema
// failures consume retry attempts like any other failure.
func (c *Client) call(ctx context.Context, prompt string, timeout time.Duration, v interface{}) (string, error) {
	model := c.primaryModel
	fallbackUsed := false
	attempts := make(map[Kind]int)

	for {
		callCtx := ctx
		cancel := func() {}
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		raw, err := c.provider.Complete(callCtx, prompt, CallConfig{
			Model:           model,
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		})
		cancel()

		if err == nil && v != nil {
			err = DecodeStructured(raw, v)
		}
		if err == nil {
			return raw, nil
		}

		gatewayErr := asClassified(err)

		// Model fallback happens once, outside the retry budget.
		if gatewayErr.Kind == KindModelUnavailable && !fallbackUsed &&
			c.fallbackModel != "" && c.fallbackModel != model {
			fallbackUsed = true
			c.logger.Warn("primary model unavailable, falling back",
				zap.String("primary", model),
				zap.String("fallback", c.fallbackModel),
			)
			model = c.fallbackModel
			continue
		}

		rule := c.policy[gatewayErr.Kind]
		attempts[gatewayErr.Kind]++
		if !rule.Retryable || attempts[gatewayErr.Kind] >= rule.MaxAttempts {
			return "", gatewayErr
		}

		delay := rule.Backoff(attempts[gatewayErr.Kind])
		c.logger.Warn("gateway call failed, retrying",
			zap.String("kind", gatewayErr.Kind.String()),
			zap.Int("attempt", attempts[gatewayErr.Kind]),
			zap.Duration("backoff", delay),
			zap.Error(gatewayErr),
		)
		if sleepErr := sleepContext(ctx, delay); sleepErr != nil {
			return "", NewError(KindTransientNetwork, "retry wait interrupted", sleepErr)
		}
	}
}

// ValidateCredential runs the lightweight probe call that gates the
// pipeline's AwaitingCredential stage.
func (c *Client) ValidateCredential(ctx context.Context, timeout time.Duration) error {
	raw, err := c.call(ctx, probePrompt, timeout, nil)
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToLower(raw), "valid") {
		return NewError(KindMalformedResponse, "probe call returned an unexpected response", nil)
	}
	return nil
}

// WorkingModel returns the first of (primary, fallback) that answers the
// probe, so the boundary can report which model a session will use.
func (c *Client) WorkingModel(ctx context.Context, timeout time.Duration) (string, error) {
	for _, model := range []string{c.primaryModel, c.fallbackModel} {
		if model == "" {
			continue
		}
		callCtx := ctx
		cancel := func() {}
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		_, err := c.provider.Complete(callCtx, probePrompt, CallConfig{
			Model:           model,
			Temperature:     0,
			MaxOutputTokens: 16,
		})
		cancel()
		if err == nil {
			return model, nil
		}
		if KindOf(err) != KindModelUnavailable {
			return "", asClassified(err)
		}
	}
	return "", NewError(KindModelUnavailable, "no configured model is available", nil)
}

// asClassified normalizes any error into a *Error, treating unclassified
// failures as transient.
func asClassified(err error) *Error {
	if gatewayErr, ok := AsError(err); ok {
		return gatewayErr
	}
	return NewError(KindTransientNetwork, err.Error(), err)
}
