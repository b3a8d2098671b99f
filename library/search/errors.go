package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// Kind identifies a machine-stable failure class for search pipeline errors.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindQuota      Kind = "QuotaExceeded"
	KindTimeout    Kind = "Timeout"
	KindTransport  Kind = "TransportError"
	KindUpstream   Kind = "UpstreamError"
	KindPartial    Kind = "PartialFailure"
)

// ErrUnsupportedOption signals that the active provider implementation does not
// understand an optional capability parameter. Callers degrade by retrying the
// same call without the offending option.
var ErrUnsupportedOption = errors.New("option not supported by provider")

// Error captures a classified search failure with remediation metadata.
type Error struct {
	Kind       Kind
	Message    string
	Hint       string
	StatusCode int
	Attempts   int
	Retryable  bool
	Err        error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "search error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("search error: %s", e.Kind)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As traversal.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError constructs a typed search error with retryability derived from the kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kindRetryable(kind)}
}

// NewErrorf constructs a typed search error from a format string.
func NewErrorf(kind Kind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *Error) WithHint(hint string) *Error {
	if e != nil {
		e.Hint = hint
	}
	return e
}

// AsError extracts a typed search error from the error chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsKind reports whether the error chain contains the given failure kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if typed, ok := AsError(err); ok {
		return typed.Kind == kind
	}
	return false
}

var (
	quotaKeywords   = []string{"credit", "quota", "limit", "billing"}
	timeoutKeywords = []string{"timeout", "time out", "took too long"}
)

// Classify maps an upstream failure onto the error taxonomy using the reported
// HTTP status and well-known message keywords. Quota detection runs first so
// that rate-limit responses are never retried. Pass statusCode 0 when the
// failure happened before any HTTP exchange completed.
func Classify(err error, statusCode int) *Error {
	if err != nil {
		if typed, ok := AsError(err); ok {
			return typed
		}
	}

	message := ""
	if err != nil {
		message = err.Error()
	}
	lowered := strings.ToLower(message)

	kind := classifyKind(err, lowered, statusCode)
	classified := NewError(kind, message)
	classified.StatusCode = statusCode
	classified.Err = err
	return classified
}

func classifyKind(err error, lowered string, statusCode int) Kind {
	if containsAny(lowered, quotaKeywords) {
		return KindQuota
	}

	switch statusCode {
	// 432 and 433 are Tavily's plan-limit and pay-as-you-go-limit statuses.
	case http.StatusTooManyRequests, 432, 433:
		return KindQuota
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) || containsAny(lowered, timeoutKeywords) {
		return KindTimeout
	}

	if statusCode >= http.StatusBadRequest {
		return KindUpstream
	}

	return KindTransport
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func kindRetryable(kind Kind) bool {
	switch kind {
	case KindTimeout, KindTransport, KindUpstream:
		return true
	default:
		return false
	}
}
