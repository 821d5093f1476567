package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdanthealth/medguard/internal/embeddings"
	"github.com/verdanthealth/medguard/internal/knowledge"
)

var (
	validateKB   string
	validateTopK int
)

var validateCmd = &cobra.Command{
	Use:   "validate [query]",
	Short: "Validate the persisted knowledge base",
	Long: `Validate loads the store artifacts, verifies they form a matched
pair, and prints store statistics. With a query argument it also runs a
live retrieval against the embedding service.

Examples:
  # Check artifact integrity
  medkb validate

  # Integrity plus a retrieval smoke test
  medkb validate "metformin renal dosing" --top-k 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateKB, "kb", "", "store directory (defaults to knowledge.dir from config)")
	validateCmd.Flags().IntVar(&validateTopK, "top-k", 3, "number of chunks to retrieve for the query")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	dir := validateKB
	if dir == "" {
		dir = cfg.Knowledge.Dir
	}

	store, err := knowledge.LoadStore(dir)
	if err != nil {
		return fmt.Errorf("knowledge base at %s is not servable: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Build ID:  %s\n", store.BuildID())
	fmt.Fprintf(out, "Chunks:    %d\n", store.Len())
	fmt.Fprintf(out, "Dimension: %d\n", store.Dimension())

	if len(args) == 0 {
		return nil
	}

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
		Timeout: cfg.Embeddings.Timeout,
	}, logger.Underlying())
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}

	queryVec, err := embedder.EmbedQuery(ctx, args[0])
	if err != nil {
		return fmt.Errorf("embedding validation query; is the embedding service reachable?: %w", err)
	}

	fmt.Fprintf(out, "\nTop %d for %q:\n", validateTopK, args[0])
	for rank, idx := range store.Search(queryVec, validateTopK) {
		if idx == knowledge.NoMatch {
			continue
		}
		chunk := store.Chunk(idx)
		fmt.Fprintf(out, "%d. %s\n   %s\n", rank+1, chunk.Source, preview(chunk.Content, 160))
	}
	return nil
}

// preview truncates content to n characters for terminal display.
func preview(content string, n int) string {
	if len(content) <= n {
		return content
	}
	return content[:n] + "..."
}
