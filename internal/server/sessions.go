package server

import (
	"sync"

	"github.com/urbanthreadz/brandchat/internal/rag"
)

// sessionRegistry holds live chat sessions by ID. Sessions live for the
// life of the process; there is no eviction.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*rag.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*rag.Session)}
}

// create registers a fresh session and returns it.
func (r *sessionRegistry) create() *rag.Session {
	session := rag.NewSession()
	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session
}

// get returns the session with the given ID, or nil.
func (r *sessionRegistry) get(id string) *rag.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}
