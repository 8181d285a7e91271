// Package gateway wraps the external generative AI providers behind a single
// retrying client. It classifies provider failures into a fixed taxonomy,
// applies the declarative retry policy, and parses structured JSON payloads
// out of raw model output.
package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures. Every kind maps to a distinct
// user-facing remediation and a retry rule in the policy table.
type Kind int

const (
	// KindInvalidCredential means the API key was rejected.
	KindInvalidCredential Kind = iota
	// KindQuotaExceeded means the daily/billing quota is exhausted.
	KindQuotaExceeded
	// KindRateLimited means the provider throttled the request.
	KindRateLimited
	// KindTransientNetwork covers timeouts and connection failures.
	KindTransientNetwork
	// KindModelUnavailable means the requested model does not exist or is
	// temporarily unavailable.
	KindModelUnavailable
	// KindMalformedResponse means the model replied but the reply did not
	// match the required schema.
	KindMalformedResponse
	// KindInvalidRequest means the request itself was rejected as invalid.
	KindInvalidRequest
)

// String returns the stable name of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "InvalidCredential"
	case KindQuotaExceeded:
		return "QuotaExceeded"
	case KindRateLimited:
		return "RateLimited"
	case KindTransientNetwork:
		return "TransientNetwork"
	case KindModelUnavailable:
		return "ModelUnavailable"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindInvalidRequest:
		return "InvalidRequest"
	default:
		return "Unknown"
	}
}

// remediation maps each kind to a human-actionable hint.
func (k Kind) remediation() string {
	switch k {
	case KindInvalidCredential:
		return "Check that your API key is correct and has not expired"
	case KindQuotaExceeded:
		return "Your daily quota is exhausted; wait for it to reset or upgrade your plan"
	case KindRateLimited:
		return "The provider is throttling requests; wait a moment and try again"
	case KindTransientNetwork:
		return "Check your network connection and try again"
	case KindModelUnavailable:
		return "The configured model is unavailable; pick a different model in the settings"
	case KindMalformedResponse:
		return "The model returned an unexpected format; trying again usually helps"
	case KindInvalidRequest:
		return "The request was rejected; review the input and settings"
	default:
		return ""
	}
}

// Error is a classified gateway failure. It carries the failure kind, a
// human-actionable remediation hint, and whether retrying the same call is
// expected to help.
type Error struct {
	Kind    Kind
	Message string
	Action  string
	Err     error // underlying provider error, may be nil
}

func (e *Error) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s. %s", e.Kind, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the default policy would retry this failure.
func (e *Error) Retryable() bool {
	rule, ok := DefaultPolicy()[e.Kind]
	return ok && rule.Retryable
}

// NewError builds a classified gateway error with the standard remediation
// hint for its kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Action:  kind.remediation(),
		Err:     cause,
	}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr, true
	}
	return nil, false
}

// KindOf returns the kind of a classified error, or KindTransientNetwork for
// anything unclassified (unknown failures are treated as transient so a
// retry gets a chance before the user sees them).
func KindOf(err error) Kind {
	if gatewayErr, ok := AsError(err); ok {
		return gatewayErr.Kind
	}
	return KindTransientNetwork
}
