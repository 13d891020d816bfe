package server

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/urbanthreadz/brandchat/internal/auth"
	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/ingest"
	"github.com/urbanthreadz/brandchat/internal/llm"
	"github.com/urbanthreadz/brandchat/internal/rag"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

const testAdminKey = "admin123"

// mockEmbedder produces deterministic vectors from a hash of the text.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		h := fnv.New32a()
		h.Write([]byte(text))
		seed := h.Sum32()
		for j := range vec {
			seed = seed*1664525 + 1013904223
			vec[j] = float32(seed%1000)/1000.0 - 0.5
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// staticProvider returns a fixed completion.
type staticProvider struct {
	reply string
}

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.reply, FinishReason: "stop"}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	embedder := &mockEmbedder{dims: 16}
	index := vecindex.NewSwappable(vecindex.NewMemoryIndex())

	catalog, err := business.ParseCatalog([]byte(`{"tee": {"price": 25}}`))
	if err != nil {
		t.Fatal(err)
	}
	biz := &business.Config{BusinessName: "Urban Threadz"}
	if err := biz.Validate(); err != nil {
		t.Fatal(err)
	}

	assistant := rag.NewAssistant(
		rag.NewRetriever(embedder, index, 4),
		rag.NewSynthesizer(&staticProvider{reply: "hello"}, "test-model"),
		biz,
		catalog,
		5*time.Second,
	)

	return New(Config{Addr: ":0", AllowAll: true}, Deps{
		Assistant:      assistant,
		Auth:           auth.NewStatic(testAdminKey),
		Business:       biz,
		Embedder:       embedder,
		Index:          index,
		NewIndex:       func() vecindex.Index { return vecindex.NewMemoryIndex() },
		Chunker:        ingest.NewChunker(1000, 100),
		BusinessID:     "urban-threadz",
		MaxConcurrency: 2,
	})
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	w := postJSON(t, srv, "/api/session", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d", w.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == "" {
		t.Fatal("create session: empty session_id")
	}
	return resp.SessionID
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBusinessEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/business", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var biz business.Config
	if err := json.Unmarshal(w.Body.Bytes(), &biz); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if biz.BusinessName != "Urban Threadz" {
		t.Errorf("business_name: got %q", biz.BusinessName)
	}
	if biz.Branding.PrimaryColor == "" {
		t.Error("branding defaults not applied")
	}
}

func TestLoginWrongKey(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	w := postJSON(t, srv, "/api/admin/login", loginRequest{SessionID: id, AdminKey: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginSwitchesToAdmin(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	w := postJSON(t, srv, "/api/admin/login", loginRequest{SessionID: id, AdminKey: testAdminKey})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != "admin" {
		t.Errorf("mode after login: got %q, want admin", resp.Mode)
	}
}

func TestSwitchModeAdminRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	w := postJSON(t, srv, "/api/session/"+id+"/mode", modeRequest{Mode: "admin"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSwitchModeBackToCustomer(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	if w := postJSON(t, srv, "/api/admin/login", loginRequest{SessionID: id, AdminKey: testAdminKey}); w.Code != http.StatusOK {
		t.Fatalf("login: %d", w.Code)
	}
	w := postJSON(t, srv, "/api/session/"+id+"/mode", modeRequest{Mode: "customer"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != "customer" {
		t.Errorf("mode: got %q, want customer", resp.Mode)
	}
}

func TestSwitchModeUnknownMode(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	w := postJSON(t, srv, "/api/session/"+id+"/mode", modeRequest{Mode: "root"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/session/nope/transcript", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func uploadRequest(t *testing.T, sessionID, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("session_id", sessionID); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, uploadRequest(t, id, "doc.pdf", []byte("%PDF-1.4 data")))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	if w := postJSON(t, srv, "/api/admin/login", loginRequest{SessionID: id, AdminKey: testAdminKey}); w.Code != http.StatusOK {
		t.Fatalf("login: %d", w.Code)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, uploadRequest(t, id, "notes.txt", []byte("plain text, not a pdf")))
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d: %s", w.Code, w.Body.String())
	}
	// Failed upload leaves the serving index untouched.
	if srv.deps.Index.Count() != 0 {
		t.Error("index mutated by rejected upload")
	}
}

func TestUploadRejectsCorruptPDF(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	if w := postJSON(t, srv, "/api/admin/login", loginRequest{SessionID: id, AdminKey: testAdminKey}); w.Code != http.StatusOK {
		t.Fatalf("login: %d", w.Code)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, uploadRequest(t, id, "doc.pdf", []byte("%PDF-1.7\nnot really a pdf body")))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChatEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	// Speak the chat protocol over a real connection.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(chatRequest{Type: "message", Content: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "response" {
		t.Fatalf("type: got %q, want response", resp.Type)
	}
	if resp.SessionID == "" {
		t.Error("expected a session_id for a fresh conversation")
	}
	if resp.Content != "hello" {
		t.Errorf("content: got %q, want hello", resp.Content)
	}
	if resp.Mode != "customer" {
		t.Errorf("mode: got %q, want customer", resp.Mode)
	}
}
