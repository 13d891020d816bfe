package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbanthreadz/brandchat/internal/auth"
	"github.com/urbanthreadz/brandchat/internal/business"
	"github.com/urbanthreadz/brandchat/internal/config"
	"github.com/urbanthreadz/brandchat/internal/ingest"
	"github.com/urbanthreadz/brandchat/internal/rag"
	"github.com/urbanthreadz/brandchat/internal/server"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Starts the HTTP server: WebSocket chat, admin login and PDF upload
endpoints, and the business branding document for the frontend.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	initial, err := openIndex(cfg, embedder)
	if err != nil {
		return err
	}
	index := vecindex.NewSwappable(initial)

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}
	biz, err := business.LoadConfig(cfg.BusinessDir, cfg.BusinessID)
	if err != nil {
		return err
	}
	catalog, err := business.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	assistant := rag.NewAssistant(
		rag.NewRetriever(embedder, index, cfg.RetrievalTopK),
		rag.NewSynthesizer(provider, cfg.Model),
		biz,
		catalog,
		cfg.RequestTimeout(),
	)

	newIndex := func() vecindex.Index {
		if cfg.IndexBackend == config.IndexMemory {
			return vecindex.NewMemoryIndex()
		}
		idx, err := vecindex.NewChromemIndex(embedder)
		if err != nil {
			// NewChromemIndex only fails on collection setup; fall back
			// to the in-memory backend rather than failing the upload.
			return vecindex.NewMemoryIndex()
		}
		return idx
	}

	srv := server.New(server.Config{Addr: cfg.ListenAddr, AllowAll: allowAll}, server.Deps{
		Assistant:      assistant,
		Auth:           auth.NewStatic(cfg.AdminKey),
		Business:       biz,
		Embedder:       embedder,
		Index:          index,
		NewIndex:       newIndex,
		Chunker:        ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		BusinessID:     cfg.BusinessID,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	// Shut down cleanly on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
