package knowledge

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestStore(t *testing.T, buildID string, contents ...string) *Store {
	t.Helper()
	store := NewStore(buildID, fakeDimension)
	for i, content := range contents {
		err := store.Append(fakeVector(content), Chunk{
			Source:  "doc.txt (chunk " + string(rune('1'+i)) + ")",
			Content: content,
		})
		require.NoError(t, err)
	}
	return store
}

func TestStoreAppend(t *testing.T) {
	store := NewStore("build-1", 3)

	require.NoError(t, store.Append([]float32{1, 2, 3}, Chunk{Source: "a", Content: "alpha"}))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "alpha", store.Chunk(0).Content)

	err := store.Append([]float32{1, 2}, Chunk{Source: "b", Content: "beta"})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, store.Len(), "rejected vector must not grow either sequence")
}

func TestStoreSearch(t *testing.T) {
	store := buildTestStore(t, "build-1", "warfarin dosing", "aspirin overdose", "metformin renal")

	t.Run("exact match ranks first", func(t *testing.T) {
		got := store.Search(fakeVector("aspirin overdose"), 2)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0])
	})

	t.Run("pads to k with sentinel", func(t *testing.T) {
		got := store.Search(fakeVector("warfarin dosing"), 5)
		require.Len(t, got, 5)
		assert.Equal(t, 0, got[0])
		assert.Equal(t, NoMatch, got[3])
		assert.Equal(t, NoMatch, got[4])
	})

	t.Run("empty store returns only sentinels", func(t *testing.T) {
		empty := NewStore("build-2", fakeDimension)
		assert.Equal(t, []int{NoMatch, NoMatch, NoMatch}, empty.Search(fakeVector("anything"), 3))
	})

	t.Run("wrong query dimension returns only sentinels", func(t *testing.T) {
		assert.Equal(t, []int{NoMatch}, store.Search([]float32{1, 2}, 1))
	})

	t.Run("non-positive k", func(t *testing.T) {
		assert.Nil(t, store.Search(fakeVector("x"), 0))
		assert.Nil(t, store.Search(fakeVector("x"), -1))
	})

	t.Run("ties break by ascending index", func(t *testing.T) {
		dup := NewStore("build-3", 2)
		require.NoError(t, dup.Append([]float32{1, 1}, Chunk{Content: "first"}))
		require.NoError(t, dup.Append([]float32{1, 1}, Chunk{Content: "second"}))
		assert.Equal(t, []int{0, 1}, dup.Search([]float32{1, 1}, 2))
	})
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := buildTestStore(t, "build-rt", "first chunk", "second chunk")

	require.NoError(t, store.Save(dir))

	loaded, err := LoadStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "build-rt", loaded.BuildID())
	assert.Equal(t, fakeDimension, loaded.Dimension())
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, store.Chunks(), loaded.Chunks())

	got := loaded.Search(fakeVector("second chunk"), 1)
	assert.Equal(t, []int{1}, got)
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, buildTestStore(t, "build-1", "only chunk").Save(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{vectorsFile, chunksFile}, names)
}

func TestStoreSaveOverwritesPreviousBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, buildTestStore(t, "build-old", "old content").Save(dir))
	require.NoError(t, buildTestStore(t, "build-new", "new one", "new two").Save(dir))

	loaded, err := LoadStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "build-new", loaded.BuildID())
	assert.Equal(t, 2, loaded.Len())
}

func TestLoadStoreRejectsBadArtifacts(t *testing.T) {
	writeVectors := func(t *testing.T, dir string, art vectorArtifact) {
		t.Helper()
		f, err := os.Create(filepath.Join(dir, vectorsFile))
		require.NoError(t, err)
		require.NoError(t, gob.NewEncoder(f).Encode(art))
		require.NoError(t, f.Close())
	}

	t.Run("missing directory", func(t *testing.T) {
		_, err := LoadStore(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})

	t.Run("missing chunk artifact", func(t *testing.T) {
		dir := t.TempDir()
		writeVectors(t, dir, vectorArtifact{Version: storeFormatVersion, BuildID: "b"})
		_, err := LoadStore(dir)
		require.Error(t, err)
	})

	t.Run("build ID mismatch", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, buildTestStore(t, "build-a", "x").Save(dir))
		writeVectors(t, dir, vectorArtifact{
			Version:   storeFormatVersion,
			BuildID:   "build-b",
			Dimension: fakeDimension,
			Vectors:   [][]float32{fakeVector("x")},
		})
		_, err := LoadStore(dir)
		require.ErrorIs(t, err, ErrStoreMisaligned)
	})

	t.Run("count mismatch", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, buildTestStore(t, "build-a", "x", "y").Save(dir))
		writeVectors(t, dir, vectorArtifact{
			Version:   storeFormatVersion,
			BuildID:   "build-a",
			Dimension: fakeDimension,
			Vectors:   [][]float32{fakeVector("x")},
		})
		_, err := LoadStore(dir)
		require.ErrorIs(t, err, ErrStoreMisaligned)
	})

	t.Run("unsupported version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, buildTestStore(t, "build-a", "x").Save(dir))
		writeVectors(t, dir, vectorArtifact{
			Version:   99,
			BuildID:   "build-a",
			Dimension: fakeDimension,
			Vectors:   [][]float32{fakeVector("x")},
		})
		_, err := LoadStore(dir)
		require.ErrorIs(t, err, ErrStoreVersion)
	})

	t.Run("corrupt chunk artifact", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, buildTestStore(t, "build-a", "x").Save(dir))
		require.NoError(t, os.WriteFile(filepath.Join(dir, chunksFile), []byte("{not json"), 0o644))
		_, err := LoadStore(dir)
		require.Error(t, err)
	})
}
