package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/llm"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// echoProvider returns the prompt it was given, so tests can inspect
// exactly what would reach the live completion service.
type echoProvider struct {
	err error
}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	var prompt string
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}
	return &llm.CompletionResponse{Content: prompt, FinishReason: "stop"}, nil
}

func testAssistant(t *testing.T, idx vecindex.Index, provider llm.Provider) *Assistant {
	t.Helper()
	embedder := &hashEmbedder{dims: 32}

	catalog, err := business.ParseCatalog([]byte(`{"hoodie": {"price": 60, "stock": "in_stock"}}`))
	if err != nil {
		t.Fatal(err)
	}
	biz := &business.Config{BusinessName: "Urban Threadz"}

	return NewAssistant(
		NewRetriever(embedder, idx, 4),
		NewSynthesizer(provider, "test-model"),
		biz,
		catalog,
		5*time.Second,
	)
}

func ingestText(t *testing.T, idx vecindex.Index, text, access string) {
	t.Helper()
	embedder := &hashEmbedder{dims: 32}
	vecs, err := embedder.Embed(context.Background(), []string{text})
	if err != nil {
		t.Fatal(err)
	}
	err = idx.Add(context.Background(), []vecindex.Segment{{
		ID:        "seg-" + access,
		Text:      text,
		Embedding: vecs[0],
		Metadata: map[string]string{
			vecindex.MetaBusinessID: "urban-threadz",
			vecindex.MetaAccess:     access,
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAskCustomerGroundsOnCatalog(t *testing.T) {
	a := testAssistant(t, vecindex.NewMemoryIndex(), &echoProvider{})
	session := NewSession()

	answer, err := a.Ask(context.Background(), session, "How much is the hoodie?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	// The echoed prompt must carry the catalog facts.
	if !strings.Contains(answer, "60") || !strings.Contains(answer, "in_stock") {
		t.Error("customer prompt missing catalog facts")
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript has %d turns, want 2", len(transcript))
	}
	if transcript[0].Role != "user" || transcript[1].Role != "assistant" {
		t.Errorf("unexpected turn roles: %q, %q", transcript[0].Role, transcript[1].Role)
	}
}

func TestAskAdminRetrievesInternalSegment(t *testing.T) {
	idx := vecindex.NewMemoryIndex()
	ingestText(t, idx, "Returns accepted within 30 days, internal policy.", vecindex.AccessInternal)

	a := testAssistant(t, idx, &echoProvider{})
	session := NewSession()
	session.SwitchMode(ModeAdmin)
	session.SetAuthenticated(true)

	answer, err := a.Ask(context.Background(), session, "What is the return window?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(answer, "30 days") {
		t.Error("admin prompt missing the retrieved internal segment")
	}
}

func TestAskAdminRequiresAuthentication(t *testing.T) {
	idx := vecindex.NewMemoryIndex()
	ingestText(t, idx, "anything", vecindex.AccessPublic)

	a := testAssistant(t, idx, &echoProvider{})
	session := NewSession()
	session.SwitchMode(ModeAdmin)

	_, err := a.Ask(context.Background(), session, "question")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
	if len(session.Transcript()) != 0 {
		t.Error("unauthenticated question should not touch the transcript")
	}
}

func TestAskAdminEmptyIndex(t *testing.T) {
	a := testAssistant(t, vecindex.NewMemoryIndex(), &echoProvider{})
	session := NewSession()
	session.SwitchMode(ModeAdmin)
	session.SetAuthenticated(true)

	answer, err := a.Ask(context.Background(), session, "What is the return window?")
	if !errors.Is(err, vecindex.ErrEmptyIndex) {
		t.Fatalf("got %v, want ErrEmptyIndex", err)
	}
	if answer == "" {
		t.Error("error turn must carry a human-readable message")
	}

	// The failure lands in the transcript as a visible assistant turn.
	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript has %d turns, want 2", len(transcript))
	}
	if transcript[1].Role != "assistant" || transcript[1].Content != answer {
		t.Error("transcript missing the error turn")
	}
}

func TestAskSurfacesGenerationFailure(t *testing.T) {
	a := testAssistant(t, vecindex.NewMemoryIndex(), &echoProvider{err: errors.New("upstream down")})
	session := NewSession()

	answer, err := a.Ask(context.Background(), session, "How much is the hoodie?")
	if !errors.Is(err, llm.ErrService) {
		t.Fatalf("got %v, want ErrService", err)
	}
	if !strings.Contains(answer, "language model") {
		t.Errorf("unexpected error message: %q", answer)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript has %d turns, want 2 (failed turn still recorded)", len(transcript))
	}
}

func TestSwitchModeClearsBothTranscripts(t *testing.T) {
	a := testAssistant(t, vecindex.NewMemoryIndex(), &echoProvider{})
	session := NewSession()

	if _, err := a.Ask(context.Background(), session, "hello"); err != nil {
		t.Fatal(err)
	}
	if len(session.Transcript()) == 0 {
		t.Fatal("expected customer turns before the switch")
	}

	session.SwitchMode(ModeAdmin)
	if len(session.Transcript()) != 0 {
		t.Error("admin transcript not empty after switch")
	}

	session.SwitchMode(ModeCustomer)
	if len(session.Transcript()) != 0 {
		t.Error("customer transcript not cleared by the switch")
	}
}

func TestSwitchModeSameModeKeepsTranscript(t *testing.T) {
	a := testAssistant(t, vecindex.NewMemoryIndex(), &echoProvider{})
	session := NewSession()

	if _, err := a.Ask(context.Background(), session, "hello"); err != nil {
		t.Fatal(err)
	}
	session.SwitchMode(ModeCustomer)
	if len(session.Transcript()) != 2 {
		t.Error("re-selecting the active mode must not clear the transcript")
	}
}

func TestUserRoleInsufficientContext(t *testing.T) {
	idx := vecindex.NewMemoryIndex()
	ingestText(t, idx, "Returns accepted within 30 days, internal policy.", vecindex.AccessInternal)

	embedder := &hashEmbedder{dims: 32}
	r := NewRetriever(embedder, idx, 4)
	segments, err := r.Retrieve(context.Background(), "What is the return window?", RoleUser)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("user role retrieved %d segments, want 0", len(segments))
	}

	prompt := ComposeDocumentPrompt(segments, "What is the return window?", RoleUser)
	if strings.Contains(prompt, "30 days") {
		t.Error("internal segment leaked into a user-role prompt")
	}
	if !strings.Contains(prompt, Refusal) {
		t.Error("prompt must instruct the refusal for insufficient context")
	}
}
