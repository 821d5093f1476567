// Package config provides configuration loading for medguard.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the medguard daemon and tools.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Knowledge  KnowledgeConfig  `koanf:"knowledge"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds log level and format as strings; they are parsed
// by the logging package at startup.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CatalogConfig points at the persisted drug and interaction catalogs.
type CatalogConfig struct {
	DrugPath         string `koanf:"drug_path"`
	InteractionsPath string `koanf:"interactions_path"`
}

// KnowledgeConfig holds knowledge base settings shared by the indexer
// and the retriever.
type KnowledgeConfig struct {
	// Dir is the directory holding the persisted store artifacts.
	Dir string `koanf:"dir"`

	// TopK is the default number of chunks returned per query.
	TopK int `koanf:"top_k"`

	// ChunkSize and ChunkOverlap are measured in characters, not tokens.
	// ChunkSize is the central retrieval-quality tuning knob: smaller
	// chunks are more precise but carry less context.
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`
}

// EmbeddingsConfig holds settings for the external embedding service.
type EmbeddingsConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Catalog.DrugPath == "" {
		cfg.Catalog.DrugPath = "data/drug_db.json"
	}
	if cfg.Catalog.InteractionsPath == "" {
		cfg.Catalog.InteractionsPath = "data/interactions.json"
	}

	if cfg.Knowledge.Dir == "" {
		cfg.Knowledge.Dir = "data/kb"
	}
	if cfg.Knowledge.TopK == 0 {
		cfg.Knowledge.TopK = 3
	}
	if cfg.Knowledge.ChunkSize == 0 {
		cfg.Knowledge.ChunkSize = 500
	}
	if cfg.Knowledge.ChunkOverlap == 0 {
		cfg.Knowledge.ChunkOverlap = 50
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Embeddings.Timeout == 0 {
		cfg.Embeddings.Timeout = 10 * time.Second
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be > 0")
	}
	if c.Knowledge.TopK <= 0 {
		return fmt.Errorf("knowledge top_k must be > 0, got %d", c.Knowledge.TopK)
	}
	if c.Knowledge.ChunkSize <= 0 {
		return fmt.Errorf("knowledge chunk_size must be > 0, got %d", c.Knowledge.ChunkSize)
	}
	if c.Knowledge.ChunkOverlap < 0 || c.Knowledge.ChunkOverlap >= c.Knowledge.ChunkSize {
		return fmt.Errorf("knowledge chunk_overlap must be in [0, chunk_size), got %d", c.Knowledge.ChunkOverlap)
	}
	if c.Embeddings.BaseURL == "" {
		return fmt.Errorf("embeddings base_url is required")
	}
	if c.Embeddings.Timeout <= 0 {
		return fmt.Errorf("embeddings timeout must be > 0")
	}
	return nil
}
