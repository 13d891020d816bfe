package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urbanthreadz/brandchat/internal/llm"
)

// Synthesizer sends a composed prompt to the completion service and
// returns the generated answer text.
type Synthesizer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
}

// NewSynthesizer creates a Synthesizer using the given provider and
// model identifier.
func NewSynthesizer(provider llm.Provider, model string) *Synthesizer {
	return &Synthesizer{
		provider:    provider,
		model:       model,
		maxTokens:   2048,
		temperature: 0.3,
	}
}

// Synthesize generates the answer for a composed prompt. Failures are
// reported as llm.ErrService so orchestration can surface them as a
// visible error rather than an empty answer.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		if errors.Is(err, llm.ErrService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", llm.ErrService, err)
	}
	return strings.TrimSpace(resp.Content), nil
}
