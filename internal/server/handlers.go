package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/urbanthreadz/brandchat/internal/embeddings"
	"github.com/urbanthreadz/brandchat/internal/ingest"
	"github.com/urbanthreadz/brandchat/internal/rag"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// maxUploadBytes caps PDF uploads at 32 MiB.
const maxUploadBytes = 32 << 20

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type loginRequest struct {
	SessionID string `json:"session_id"`
	AdminKey  string `json:"admin_key"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type uploadResponse struct {
	Chunks int `json:"chunks"`
}

// handleBusiness serves the branding document the chat frontend renders.
func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Business)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.create()
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: session.ID,
		Mode:      string(session.Mode()),
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.get(chi.URLParam(r, "id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	transcript := session.Transcript()
	if transcript == nil {
		transcript = []rag.Turn{}
	}
	writeJSON(w, http.StatusOK, transcript)
}

// handleLogin validates the admin key and, on success, marks the
// session authenticated and switches it to admin mode.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session := s.sessions.get(req.SessionID)
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if !s.deps.Auth.Authenticate(req.AdminKey) {
		writeError(w, http.StatusUnauthorized, "invalid admin key")
		return
	}
	session.SetAuthenticated(true)
	session.SwitchMode(rag.ModeAdmin)
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		Mode:      string(session.Mode()),
	})
}

// handleSwitchMode changes a session's mode. Switching to admin
// requires a prior successful login on this session.
func (s *Server) handleSwitchMode(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.get(chi.URLParam(r, "id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode := rag.Mode(req.Mode)
	switch mode {
	case rag.ModeCustomer:
	case rag.ModeAdmin:
		if !session.Authenticated() {
			writeError(w, http.StatusUnauthorized, "admin login required")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown mode: "+req.Mode)
		return
	}
	session.SwitchMode(mode)
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		Mode:      string(session.Mode()),
	})
}

// handleUpload ingests a PDF into a fresh index and swaps it in. A new
// upload replaces the previous document entirely; on failure the old
// index keeps serving.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.FormValue("session_id")
	}
	session := s.sessions.get(sessionID)
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if !session.Authenticated() {
		writeError(w, http.StatusUnauthorized, "admin login required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	access := r.FormValue("access")
	if access == "" {
		access = vecindex.AccessPublic
	}
	if access != vecindex.AccessPublic && access != vecindex.AccessInternal {
		writeError(w, http.StatusBadRequest, "access must be public or internal")
		return
	}

	next := s.deps.NewIndex()
	ingestor := ingest.NewIngestor(s.deps.Embedder, next, s.deps.Chunker, s.deps.MaxConcurrency)

	chunks, err := ingestor.Ingest(r.Context(), file, header.Size, s.deps.BusinessID, access, nil)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ingest.ErrUnsupportedFormat):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, ingest.ErrUnreadableDocument):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, embeddings.ErrService):
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
		return
	}

	s.deps.Index.Swap(next)
	log.Printf("server: indexed %s (%d chunks)", header.Filename, chunks)
	writeJSON(w, http.StatusOK, uploadResponse{Chunks: chunks})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
