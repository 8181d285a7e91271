package gateway

import (
	"context"
	"time"
)

// RetryRule describes how one failure kind is handled: whether it is worth
// retrying, how many attempts it gets in total (the original call included),
// and the base backoff delay, doubled after each failed attempt.
type RetryRule struct {
	Retryable   bool
	MaxAttempts int
	BaseDelay   time.Duration
}

// Policy maps every failure kind to its retry rule. Expressing the policy as
// a table keeps the "retry on some errors, not others" decisions in one
// place and lets each kind be unit tested without a real provider.
type Policy map[Kind]RetryRule

// DefaultPolicy returns the standard policy:
//
//   - RateLimited and TransientNetwork: up to 3 attempts, exponential backoff
//   - MalformedResponse: retried exactly once (output format drift is often
//     transient)
//   - ModelUnavailable: no retry here; the client falls back once to the
//     secondary model instead
//   - InvalidCredential, QuotaExceeded, InvalidRequest: never retried
func DefaultPolicy() Policy {
	return PolicyWithBudget(3, 2*time.Second)
}

// PolicyWithBudget builds the standard policy shape with a custom retry
// budget and base delay for the transient classes. A budget of 3 means the
// original call plus up to 3 retries.
func PolicyWithBudget(maxRetries int, baseDelay time.Duration) Policy {
	return Policy{
		KindRateLimited:      {Retryable: true, MaxAttempts: maxRetries + 1, BaseDelay: baseDelay},
		KindTransientNetwork: {Retryable: true, MaxAttempts: maxRetries + 1, BaseDelay: baseDelay / 2},
		KindMalformedResponse: {
			Retryable:   true,
			MaxAttempts: 2, // the original call plus one retry
			BaseDelay:   0,
		},
		KindModelUnavailable:  {Retryable: false},
		KindInvalidCredential: {Retryable: false},
		KindQuotaExceeded:     {Retryable: false},
		KindInvalidRequest:    {Retryable: false},
	}
}

// Backoff returns the delay before the given retry, where attempt is the
// 1-indexed attempt that just failed. The delay doubles per attempt.
func (r RetryRule) Backoff(attempt int) time.Duration {
	if r.BaseDelay <= 0 {
		return 0
	}
	delay := r.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleepContext waits for the given duration or until the context is done,
// whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
