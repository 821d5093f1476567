package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/embeddings"
	"github.com/verdanthealth/medguard/internal/logging"
)

var indexerTracer = otel.Tracer("medguard.knowledge.indexer")

// Indexer builds a knowledge store from collaborator documents. It is
// an offline batch component; nothing here runs on the request path.
type Indexer struct {
	embedder embeddings.Embedder
	chunker  Chunker
	logger   *logging.Logger
	metrics  *Metrics
}

// NewIndexer creates an Indexer using the given embedder and chunker.
func NewIndexer(embedder embeddings.Embedder, chunker Chunker, logger *logging.Logger) *Indexer {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("indexer")
	return &Indexer{
		embedder: embedder,
		chunker:  chunker,
		logger:   logger,
		metrics:  NewMetrics(logger.Underlying()),
	}
}

// Build loads, chunks, and embeds every document under the given
// folders into a new Store. Given identical inputs and the same
// embedding model, the resulting chunk list is identical in count,
// order, and content across rebuilds.
func (ix *Indexer) Build(ctx context.Context, folders []string) (*Store, error) {
	ctx, span := indexerTracer.Start(ctx, "knowledge.build")
	defer span.End()
	start := time.Now()

	docs := LoadDocuments(ctx, folders, ix.logger)
	chunks := ix.chunker.Chunk(ctx, docs)
	span.SetAttributes(
		attribute.Int("documents", len(docs)),
		attribute.Int("chunks", len(chunks)),
	)

	store, err := ix.BuildStore(ctx, chunks)
	ix.metrics.RecordBuild(ctx, time.Since(start), len(docs), len(chunks), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}
	return store, nil
}

// BuildStore embeds the given chunks and assembles an aligned store.
// An empty chunk list yields a valid empty store.
func (ix *Indexer) BuildStore(ctx context.Context, chunks []Chunk) (*Store, error) {
	buildID := uuid.NewString()
	if len(chunks) == 0 {
		ix.logger.Warn(ctx, "building empty knowledge store", zap.String("build_id", buildID))
		return NewStore(buildID, 0), nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", ErrStoreMisaligned, len(vectors), len(chunks))
	}

	store := NewStore(buildID, len(vectors[0]))
	for i, vec := range vectors {
		if err := store.Append(vec, chunks[i]); err != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", i, chunks[i].Source, err)
		}
	}

	ix.logger.Info(ctx, "knowledge store built",
		zap.String("build_id", buildID),
		zap.Int("chunks", store.Len()),
		zap.Int("dimension", store.Dimension()),
	)
	return store, nil
}
