package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a provider failure. It determines retry behavior and
// how conversations degrade.
type Kind string

const (
	// KindAuth is an authentication or authorization failure.
	// Fatal for the provider in this conversation; never retried.
	KindAuth Kind = "auth"

	// KindQuota is a rate-limit or quota exhaustion. Retrying
	// immediately cannot help, so it degrades without retry.
	KindQuota Kind = "quota"

	// KindTransient is a temporary upstream failure (5xx, timeout,
	// connection reset). Retried with backoff.
	KindTransient Kind = "transient"

	// KindParse is a malformed or unusable provider response.
	// Retried like transient in case the corruption was momentary.
	KindParse Kind = "parse"
)

// ServiceError is a classified provider failure.
type ServiceError struct {
	Provider string
	Kind     Kind
	Status   int
	Message  string
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%s, http %d)", e.Provider, e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Kind)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the call could succeed.
func (e *ServiceError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindParse
}

// KindOf extracts the failure kind from an error chain.
// Non-classified errors report "error"; ErrNoResults reports "no_results".
func KindOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	if errors.Is(err, ErrNoResults) {
		return "no_results"
	}
	return "error"
}

// retryable reports whether an error is worth another attempt.
func retryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

// classifyStatus maps an HTTP status to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusRequestTimeout || status >= 500:
		return KindTransient
	default:
		// Unexpected statuses get the bounded-retry-then-fallback
		// treatment rather than failing the conversation.
		return KindParse
	}
}

// statusError builds a ServiceError for a non-200 response.
func statusError(provider string, status int) *ServiceError {
	return &ServiceError{
		Provider: provider,
		Kind:     classifyStatus(status),
		Status:   status,
		Message:  fmt.Sprintf("unexpected status %d", status),
	}
}

// parseError builds a ServiceError for an unusable response body.
func parseError(provider, message string, err error) *ServiceError {
	return &ServiceError{
		Provider: provider,
		Kind:     KindParse,
		Message:  message,
		Err:      err,
	}
}

// transportError builds a ServiceError for a failed request
// (connection refused, timeout, DNS). Context cancellation passes
// through untouched so callers can distinguish deadline from upstream.
func transportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ServiceError{
		Provider: provider,
		Kind:     KindTransient,
		Message:  "request failed",
		Err:      err,
	}
}
