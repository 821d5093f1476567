package knowledge

import (
	"context"
	"hash/fnv"

	"github.com/verdanthealth/medguard/internal/embeddings"
)

const fakeDimension = 8

// fakeEmbedder maps text to a deterministic vector. Identical text
// always gets an identical vector, so a query equal to a stored chunk
// is guaranteed to rank first.
type fakeEmbedder struct {
	err   error
	calls int
}

var _ embeddings.Embedder = (*fakeEmbedder)(nil)

func fakeVector(text string) []float32 {
	vec := make([]float32, fakeDimension)
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000) / 1000
	}
	return vec
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = fakeVector(text)
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fakeVector(text), nil
}
