package gateway

import (
	"context"
	"errors"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"
)

// classifyOpenAIError maps sashabaranov/go-openai failures onto the gateway
// taxonomy.
func classifyOpenAIError(err error) *Error {
	if gatewayErr, ok := AsError(err); ok {
		return gatewayErr
	}
	if kind, ok := classifyCommon(err); ok {
		return NewError(kind, err.Error(), err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewError(classifyHTTPStatus(apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message), apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewError(classifyHTTPStatus(reqErr.HTTPStatusCode, "", reqErr.Error()), reqErr.Error(), err)
	}

	return NewError(KindTransientNetwork, err.Error(), err)
}

// classifyGeminiError maps google.golang.org/genai failures onto the gateway
// taxonomy.
func classifyGeminiError(err error) *Error {
	if gatewayErr, ok := AsError(err); ok {
		return gatewayErr
	}
	if kind, ok := classifyCommon(err); ok {
		return NewError(kind, err.Error(), err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return NewError(classifyHTTPStatus(apiErr.Code, apiErr.Status, apiErr.Message), apiErr.Message, err)
	}

	return NewError(KindTransientNetwork, err.Error(), err)
}

// classifyCommon handles failures shared by all providers: cancellation,
// timeouts, and plain network errors. Timeouts surface as TransientNetwork
// so the retry policy treats them as retryable.
func classifyCommon(err error) (Kind, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransientNetwork, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransientNetwork, true
	}
	return 0, false
}

// classifyHTTPStatus maps an HTTP status code plus provider hints onto the
// taxonomy. Both providers signal daily quota exhaustion inside a 429, so
// the error text is consulted to split QuotaExceeded from RateLimited.
func classifyHTTPStatus(status int, errType, message string) Kind {
	lowerMsg := strings.ToLower(message)
	lowerType := strings.ToLower(errType)

	switch status {
	case 401, 403:
		return KindInvalidCredential
	case 429:
		if strings.Contains(lowerType, "insufficient_quota") ||
			strings.Contains(lowerMsg, "quota") ||
			strings.Contains(lowerType, "resource_exhausted") && strings.Contains(lowerMsg, "daily") {
			return KindQuotaExceeded
		}
		return KindRateLimited
	case 400, 422:
		return KindInvalidRequest
	case 404:
		if strings.Contains(lowerMsg, "model") {
			return KindModelUnavailable
		}
		return KindInvalidRequest
	case 503:
		if strings.Contains(lowerMsg, "model") || strings.Contains(lowerMsg, "overloaded") {
			return KindModelUnavailable
		}
		return KindTransientNetwork
	default:
		if status >= 500 {
			return KindTransientNetwork
		}
		return KindInvalidRequest
	}
}
