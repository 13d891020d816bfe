package llm

import (
	"context"
	"errors"
)

// ErrService indicates a failure talking to the text generation service.
// The orchestrator surfaces it to the user as a visible error rather
// than a silent empty answer.
var ErrService = errors.New("generation service error")

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
