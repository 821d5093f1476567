package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthealth/medguard/internal/logging"
)

func TestRetrieverRetrieve(t *testing.T) {
	ctx := context.Background()
	store := buildTestStore(t, "build-1",
		"Warfarin interacts with NSAIDs.",
		"Metformin is contraindicated in renal failure.",
		"Amoxicillin covers common respiratory pathogens.",
	)
	r := NewRetriever(store, &fakeEmbedder{}, logging.NewNop())

	t.Run("exact query ranks its chunk first", func(t *testing.T) {
		got := r.Retrieve(ctx, "Metformin is contraindicated in renal failure.", 2)
		parts := strings.Split(got, "\n\n")
		require.Len(t, parts, 2)
		assert.Equal(t, "Metformin is contraindicated in renal failure.", parts[0])
	})

	t.Run("top-k larger than store returns all chunks", func(t *testing.T) {
		got := r.Retrieve(ctx, "Warfarin interacts with NSAIDs.", 10)
		parts := strings.Split(got, "\n\n")
		assert.Len(t, parts, 3, "sentinel indices are skipped, not rendered")
	})

	t.Run("not degraded", func(t *testing.T) {
		assert.False(t, r.Degraded())
	})
}

func TestRetrieverDegradedModes(t *testing.T) {
	ctx := context.Background()

	t.Run("nil store", func(t *testing.T) {
		r := NewRetriever(nil, &fakeEmbedder{}, logging.NewNop())
		assert.True(t, r.Degraded())
		assert.Equal(t, NoKnowledgeSentinel, r.Retrieve(ctx, "anything", 3))
	})

	t.Run("empty store", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		r := NewRetriever(NewStore("build-1", fakeDimension), embedder, logging.NewNop())
		assert.False(t, r.Degraded())
		assert.Equal(t, NoKnowledgeSentinel, r.Retrieve(ctx, "anything", 3))
		assert.Equal(t, 0, embedder.calls, "empty store short-circuits before embedding")
	})

	t.Run("embedding failure", func(t *testing.T) {
		store := buildTestStore(t, "build-1", "some chunk")
		r := NewRetriever(store, &fakeEmbedder{err: errors.New("timeout")}, logging.NewNop())
		assert.Equal(t, NoKnowledgeSentinel, r.Retrieve(ctx, "query", 3))
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := buildTestStore(t, "build-1", "some chunk")
		r := NewRetriever(store, &fakeEmbedder{}, logging.NewNop())
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.Equal(t, NoKnowledgeSentinel, r.Retrieve(cancelled, "query", 3))
	})
}

func TestOpenRetriever(t *testing.T) {
	ctx := context.Background()

	t.Run("loads persisted store", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, buildTestStore(t, "build-1", "persisted chunk").Save(dir))

		r := OpenRetriever(ctx, dir, &fakeEmbedder{}, logging.NewNop())
		require.False(t, r.Degraded())
		assert.Equal(t, "persisted chunk", r.Retrieve(ctx, "persisted chunk", 1))
	})

	t.Run("missing store degrades without error", func(t *testing.T) {
		r := OpenRetriever(ctx, t.TempDir(), &fakeEmbedder{}, logging.NewNop())
		assert.True(t, r.Degraded())
		assert.Equal(t, NoKnowledgeSentinel, r.Retrieve(ctx, "query", 3))
	})
}
