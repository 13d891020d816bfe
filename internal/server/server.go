// Package server exposes the assistant over HTTP: a WebSocket chat
// endpoint, the admin login and upload endpoints, and the business
// branding document for the chat frontend.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/urbanthreadz/brandchat/internal/auth"
	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/ingest"
	"github.com/urbanthreadz/brandchat/internal/rag"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins (dev mode)
}

// Deps are the wired dependencies the server serves.
type Deps struct {
	Assistant *rag.Assistant
	Auth      auth.Authenticator
	Business  *business.Config

	// Upload pipeline. A successful upload builds a fresh index via
	// NewIndex and swaps it in, replacing whatever was indexed before.
	Embedder       embeddings.Embedder
	Index          *vecindex.Swappable
	NewIndex       func() vecindex.Index
	Chunker        ingest.Chunker
	BusinessID     string
	MaxConcurrency int
}

// Server routes chat, admin and branding requests to the assistant.
type Server struct {
	cfg        Config
	deps       Deps
	sessions   *sessionRegistry
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		sessions: newSessionRegistry(),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/api/business", s.handleBusiness)
	r.Post("/api/session", s.handleCreateSession)
	r.Get("/api/session/{id}/transcript", s.handleTranscript)
	r.Post("/api/session/{id}/mode", s.handleSwitchMode)
	r.Post("/api/admin/login", s.handleLogin)
	r.Post("/api/admin/upload", s.handleUpload)
	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("brandchat server listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
