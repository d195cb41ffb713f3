package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"finrag-orchestrator/internal/adapter/repository"
	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/infra"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/lexical"
)

var (
	version = "dev"

	// Global flags
	verbose   bool
	indexPath string

	// Rebuild command flags
	k1 float64
	b  float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "indexctl",
	Short:   "Manage the keyword search index",
	Version: version,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the keyword index from the chunk store",
	Long: `Rebuild the keyword index from the chunks stored in PostgreSQL.

The index is written atomically: a serving process picks it up on its next
restart, or immediately when told to via POST /internal/index/rebuild.

Examples:
  # Rebuild into the configured index path
  indexctl rebuild

  # Rebuild into an explicit file with custom BM25 parameters
  indexctl rebuild --index-path ./keyword.idx --k1 1.5 --b 0.6`,
	RunE: runRebuild,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print statistics for a persisted keyword index",
	RunE:  runInspect,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the persisted index against the chunk store",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index-path", "", "index file path (defaults to KEYWORD_INDEX_PATH)")

	rebuildCmd.Flags().Float64Var(&k1, "k1", 0, "BM25 k1 parameter (0 uses the configured value)")
	rebuildCmd.Flags().Float64Var(&b, "b", -1, "BM25 b parameter (-1 uses the configured value)")

	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statusCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func resolvePath(cfg *config.Config) string {
	if indexPath != "" {
		return indexPath
	}
	return cfg.Keyword.IndexPath
}

func runRebuild(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg := config.Load()

	buildK1 := cfg.Keyword.K1
	if k1 > 0 {
		buildK1 = k1
	}
	buildB := cfg.Keyword.B
	if b >= 0 {
		buildB = b
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	pool, err := infra.NewPostgresDB(ctx, dsn, infra.PoolConfig{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	chunks := repository.NewChunkRepository(pool)

	start := time.Now()
	corpus, err := chunks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	logger.Debug("corpus_loaded", slog.Int("chunks", len(corpus)))

	idx, err := lexical.Build(corpus, buildK1, buildB)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return fmt.Errorf("chunk store is empty, nothing to index")
		}
		return fmt.Errorf("build index: %w", err)
	}

	path := resolvePath(cfg)
	if err := idx.Save(path); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	logger.Info("keyword_index_written",
		slog.String("path", path),
		slog.Int("chunks", idx.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path := resolvePath(cfg)

	idx, err := lexical.Load(path)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	idxK1, idxB := idx.Params()
	fmt.Printf("Index: %s\n", path)
	fmt.Printf("Chunks: %d\n", idx.Len())
	fmt.Printf("BM25 k1: %.2f, b: %.2f\n", idxK1, idxB)

	docs := map[string]int{}
	for _, ref := range idx.Refs() {
		docs[ref.Document]++
	}
	fmt.Printf("Documents: %d\n", len(docs))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path := resolvePath(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	pool, err := infra.NewPostgresDB(ctx, dsn, infra.PoolConfig{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	stored, err := repository.NewChunkRepository(pool).Count(ctx)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}
	fmt.Printf("Chunk store: %d chunks\n", stored)

	idx, err := lexical.Load(path)
	switch {
	case err == nil:
		fmt.Printf("Index: %s (%d chunks)\n", path, idx.Len())
		if idx.Len() != stored {
			fmt.Println("Status: STALE (counts differ, rebuild recommended)")
		} else {
			fmt.Println("Status: up to date")
		}
	case errors.Is(err, os.ErrNotExist):
		fmt.Printf("Index: %s (missing)\n", path)
		fmt.Println("Status: NOT BUILT")
	default:
		return fmt.Errorf("load index: %w", err)
	}
	return nil
}
