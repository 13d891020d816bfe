package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/urbanthreadz/brandchat/internal/ingest"
	"github.com/urbanthreadz/brandchat/internal/progress"
	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf]",
	Short: "Index a PDF document for admin-mode question answering",
	Long: `Loads the given PDF, splits it into overlapping chunks, embeds each
chunk and writes the result to the configured index. Ingesting a new
document replaces whatever was indexed before.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("access", vecindex.AccessPublic, "access level for the document: public or internal")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]
	access, _ := cmd.Flags().GetString("access")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	// Always start from an empty index: a new document replaces the
	// previous one.
	idx, err := vecindex.NewChromemIndex(embedder)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	reporter := progress.NewReporter()
	chunker := ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestor := ingest.NewIngestor(embedder, idx, chunker, cfg.MaxConcurrency)

	// The progress callback fires from concurrent embed workers.
	var (
		progressMu sync.Mutex
		started    bool
	)
	chunks, err := ingestor.Ingest(ctx, f, info.Size(), cfg.BusinessID, access, func(done, total int) {
		progressMu.Lock()
		defer progressMu.Unlock()
		if !started {
			reporter.Start(total)
			started = true
		}
		reporter.Update(done, fmt.Sprintf("embedding %s", path))
	})
	if started {
		reporter.Finish()
	}
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}
	if chunks == 0 {
		fmt.Println("Document contained no extractable text; nothing indexed.")
		return nil
	}

	if cfg.IndexPath != "" {
		if err := idx.Persist(ctx, cfg.IndexPath); err != nil {
			return fmt.Errorf("persisting index to %s: %w", cfg.IndexPath, err)
		}
	}

	fmt.Printf("Indexed %d chunks from %s (access=%s)\n", chunks, path, access)
	return nil
}
