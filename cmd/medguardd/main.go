// Medguardd is the medication safety daemon.
//
// It loads the drug and interaction catalogs, opens the persisted
// knowledge base, and serves the safety check and knowledge query API
// over HTTP. Missing reference data degrades the relevant checks but
// never prevents startup; /health reports what is degraded.
//
// Configuration is read from an optional YAML file plus MEDGUARD_*
// environment variables.
//
// Usage:
//
//	# Start with defaults
//	medguardd
//
//	# Configure via file and environment
//	MEDGUARD_SERVER_PORT=9090 medguardd --config medguard.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/catalog"
	"github.com/verdanthealth/medguard/internal/config"
	"github.com/verdanthealth/medguard/internal/embeddings"
	"github.com/verdanthealth/medguard/internal/knowledge"
	"github.com/verdanthealth/medguard/internal/logging"
	"github.com/verdanthealth/medguard/internal/rules"
	"github.com/verdanthealth/medguard/internal/server"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("medguardd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the daemon and blocks until the context is cancelled.
//
// Initialization order matters: the catalogs and knowledge base load
// fail-open, so every error after configuration and logging is a
// degradation, not a startup failure.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting medguardd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout),
	)

	cat := catalog.Load(ctx, cfg.Catalog.DrugPath, cfg.Catalog.InteractionsPath, logger)
	logger.Info(ctx, "catalogs loaded",
		zap.Int("drugs", cat.DrugCount()),
		zap.Int("interactions", cat.InteractionCount()),
		zap.Bool("degraded", cat.Degraded()),
	)
	engine := rules.NewEngine(cat, logger)

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
		Timeout: cfg.Embeddings.Timeout,
	}, logger.Underlying())
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}

	retriever := knowledge.OpenRetriever(ctx, cfg.Knowledge.Dir, embedder, logger)

	srv, err := server.NewServer(engine, retriever, cfg.Knowledge.TopK, logger, &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// initLogger builds the process logger from configuration.
func initLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	return logging.NewLogger(logCfg)
}
