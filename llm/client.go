package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Client is a chat completion client for a single provider.
type Client interface {
	CompleteChat(ctx context.Context, req ChatRequest) (string, error)
}

// RateLimitError signals a 429 from the provider. Retryable.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s API", e.Provider)
}

// UnavailableError signals a server-side or transport failure talking
// to the provider. Retryable.
type UnavailableError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s API unavailable (status %d)", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API unreachable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError signals a reply that arrived but cannot be
// used: empty completions, missing JSON, undecodable JSON.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Reason
}

// IsRetryable reports whether a completion error is worth retrying.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	var ua *UnavailableError
	return errors.As(err, &rl) || errors.As(err, &ua)
}
