package rag

import (
	"sync"

	"github.com/google/uuid"
)

// Mode selects which assistant a session is talking to.
type Mode string

const (
	// ModeCustomer answers shopper questions from the static catalog.
	ModeCustomer Mode = "customer"
	// ModeAdmin answers questions about the uploaded document via RAG.
	ModeAdmin Mode = "admin"
)

// Turn is one conversation entry. The sequence is append-only; turns
// are never reordered or mutated after append.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Session holds all per-conversation state explicitly: the two
// transcripts, the current mode and the admin authentication flag.
// Nothing lives in ambient globals.
type Session struct {
	ID string

	mu            sync.Mutex
	mode          Mode
	customer      []Turn
	admin         []Turn
	authenticated bool

	// turnMu serializes questions: one in-flight turn per session.
	turnMu sync.Mutex
}

// NewSession creates a session starting in customer mode.
func NewSession() *Session {
	return &Session{
		ID:   uuid.New().String(),
		mode: ModeCustomer,
	}
}

// Mode returns the session's current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SwitchMode changes the active mode. Switching clears BOTH
// transcripts: a conversation never carries over across modes.
// Switching to the already-active mode is a no-op.
func (s *Session) SwitchMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return
	}
	s.mode = mode
	s.customer = nil
	s.admin = nil
}

// Transcript returns a copy of the current mode's transcript.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.transcriptLocked()
	out := make([]Turn, len(src))
	copy(out, src)
	return out
}

// SetAuthenticated records the outcome of an admin authentication
// attempt.
func (s *Session) SetAuthenticated(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = ok
}

// Authenticated reports whether the session passed the admin gate.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.mode {
	case ModeAdmin:
		s.admin = append(s.admin, turn)
	default:
		s.customer = append(s.customer, turn)
	}
}

func (s *Session) transcriptLocked() []Turn {
	if s.mode == ModeAdmin {
		return s.admin
	}
	return s.customer
}
