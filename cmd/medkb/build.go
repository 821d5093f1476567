package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/config"
	"github.com/verdanthealth/medguard/internal/embeddings"
	"github.com/verdanthealth/medguard/internal/knowledge"
	"github.com/verdanthealth/medguard/internal/logging"
)

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build <folder>...",
	Short: "Build the knowledge base from source document folders",
	Long: `Build chunks and embeds every preprocessed JSON document in the given
folders and writes the store artifacts to the output directory.

Examples:
  # Build from one folder into the configured store directory
  medkb build ./sources/cleaned

  # Build from several folders into an explicit directory
  medkb build --out data/kb ./sources/cleaned ./sources/sheets`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output directory (defaults to knowledge.dir from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	out := buildOut
	if out == "" {
		out = cfg.Knowledge.Dir
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

	chunker := knowledge.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap, logger)
	indexer := knowledge.NewIndexer(embedder, chunker, logger)

	store, err := indexer.Build(ctx, args)
	if err != nil {
		return fmt.Errorf("building knowledge base: %w", err)
	}

	if err := store.Save(out); err != nil {
		return fmt.Errorf("saving knowledge base: %w", err)
	}

	logger.Info(ctx, "knowledge base written",
		zap.String("dir", out),
		zap.String("build_id", store.BuildID()),
		zap.Int("chunks", store.Len()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Built %d chunks (build %s) into %s\n", store.Len(), store.BuildID(), out)
	return nil
}

// loadEnvironment loads config and builds a console logger suited to
// interactive use.
func loadEnvironment() (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = "console"

	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, logger, nil
}
