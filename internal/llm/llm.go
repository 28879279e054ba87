// Package llm defines the boundary to the external model provider.
package llm

import (
	"context"
	"fmt"
)

// Message is one chat turn sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call. MaxTokens is the tier-derived
// output budget; the dispatcher never adjusts it.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Client performs exactly one provider call per Complete invocation.
// No retries happen at this layer.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// TransportError reports a network or HTTP-level failure.
type TransportError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model transport failure: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("model transport failure: %s", e.Detail)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamFormatError reports a provider response that decoded but
// lacked the expected result field.
type UpstreamFormatError struct {
	Detail string
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("unexpected model response shape: %s", e.Detail)
}

// ConfigurationError reports a missing or unusable provider credential.
// It is checked at startup and health-check time, not only per call.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("model client misconfigured: %s", e.Detail)
}
