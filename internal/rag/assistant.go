package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/llm"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// ErrNotAuthenticated is returned when an admin question arrives on a
// session that never passed the admin gate.
var ErrNotAuthenticated = errors.New("session is not authenticated for admin mode")

// Assistant orchestrates one conversation turn: retrieve (admin mode),
// compose, synthesize, record. Every turn runs to completion; a stage
// failure is recorded in the transcript as a visible assistant error
// message, never a crash or a silent empty answer.
type Assistant struct {
	retriever *Retriever
	synth     *Synthesizer
	biz       *business.Config
	catalog   *business.Catalog
	timeout   time.Duration
}

// NewAssistant wires the per-turn pipeline. timeout bounds each turn's
// external calls; zero means no limit.
func NewAssistant(retriever *Retriever, synth *Synthesizer, biz *business.Config, catalog *business.Catalog, timeout time.Duration) *Assistant {
	return &Assistant{
		retriever: retriever,
		synth:     synth,
		biz:       biz,
		catalog:   catalog,
		timeout:   timeout,
	}
}

// Ask processes one question on the session's current mode and returns
// the text to display. On failure the returned string is a
// human-readable error message, already appended to the transcript,
// alongside the non-nil error.
func (a *Assistant) Ask(ctx context.Context, session *Session, question string) (string, error) {
	// One in-flight question per session, strictly turn by turn.
	session.turnMu.Lock()
	defer session.turnMu.Unlock()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	mode := session.Mode()
	if mode == ModeAdmin && !session.Authenticated() {
		return "", ErrNotAuthenticated
	}

	session.append(Turn{Role: "user", Content: question})

	answer, err := a.answer(ctx, mode, question)
	if err != nil {
		msg := errorMessage(err)
		session.append(Turn{Role: "assistant", Content: msg})
		return msg, err
	}

	session.append(Turn{Role: "assistant", Content: answer})
	return answer, nil
}

func (a *Assistant) answer(ctx context.Context, mode Mode, question string) (string, error) {
	var prompt string
	switch mode {
	case ModeAdmin:
		segments, err := a.retriever.Retrieve(ctx, question, RoleAdmin)
		if err != nil {
			return "", err
		}
		prompt = ComposeDocumentPrompt(segments, question, RoleAdmin)
	default:
		prompt = ComposeCustomerPrompt(a.biz.BusinessName, a.catalog.JSON(), question)
	}

	return a.synth.Synthesize(ctx, prompt)
}

// errorMessage maps a pipeline failure to the message shown in the
// chat transcript.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, vecindex.ErrEmptyIndex):
		return "No document has been indexed yet. Upload a PDF to start asking questions about it."
	case errors.Is(err, embeddings.ErrService):
		return "Sorry, I couldn't process your question right now (embedding service unavailable). Please try again."
	case errors.Is(err, llm.ErrService):
		return "Sorry, I couldn't generate an answer right now (language model unavailable). Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "Sorry, that took too long and was cancelled. Please try again."
	default:
		return fmt.Sprintf("Sorry, something went wrong: %v", err)
	}
}
