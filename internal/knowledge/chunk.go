package knowledge

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/logging"
)

// Chunk is one retrievable unit of the knowledge base.
type Chunk struct {
	Source  string `json:"source"`
	Content string `json:"content_chunk"`
}

// Chunker splits free-text documents into overlapping windows.
// Structured documents pass through whole: splitting tabular or record
// data would destroy row-level semantics.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
	logger   *logging.Logger
}

// NewChunker creates a Chunker with the given window size and overlap,
// both in characters. Size bounds embedding input; overlap preserves
// local context across window boundaries.
func NewChunker(chunkSize, chunkOverlap int, logger *logging.Logger) Chunker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		logger: logger.Named("chunker"),
	}
}

// Chunk turns normalized documents into chunks, preserving document
// order. Free-text chunks get sequential "<source> (chunk N)" labels,
// 1-based; structured documents keep their source label unchanged.
func (c Chunker) Chunk(ctx context.Context, docs []RawDocument) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		if doc.Type != DocumentText {
			chunks = append(chunks, Chunk{Source: doc.Source, Content: doc.Content})
			continue
		}

		pieces, err := c.splitter.SplitText(doc.Content)
		if err != nil {
			c.logger.Warn(ctx, "skipping unsplittable document",
				zap.String("source", doc.Source), zap.Error(err))
			continue
		}
		for i, piece := range pieces {
			chunks = append(chunks, Chunk{
				Source:  fmt.Sprintf("%s (chunk %d)", doc.Source, i+1),
				Content: piece,
			})
		}
	}

	c.logger.Info(ctx, "documents chunked",
		zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))
	return chunks
}
