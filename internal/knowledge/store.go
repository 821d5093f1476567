package knowledge

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	vectorsFile = "kb_vectors.gob"
	chunksFile  = "kb_chunks.json"

	storeFormatVersion = 1
)

// NoMatch is the index sentinel for "fewer results than requested".
// Search pads its result to k with NoMatch; consumers must skip it.
const NoMatch = -1

var (
	// ErrStoreMisaligned indicates the vector and chunk artifacts do
	// not belong together (different builds or differing counts).
	ErrStoreMisaligned = errors.New("store artifacts misaligned")

	// ErrDimensionMismatch indicates a vector with the wrong dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrStoreVersion indicates an unsupported on-disk format version.
	ErrStoreVersion = errors.New("unsupported store format version")
)

// Store is the in-memory knowledge store: an ordered, positionally
// aligned sequence of (vector, chunk) pairs.
//
// A Store is append-only while being built and read-only once served;
// concurrent readers need no coordination.
type Store struct {
	buildID   string
	dimension int
	vectors   [][]float32
	chunks    []Chunk
}

// NewStore creates an empty store for the given build and vector
// dimension.
func NewStore(buildID string, dimension int) *Store {
	return &Store{buildID: buildID, dimension: dimension}
}

// Append adds one (vector, chunk) pair, keeping the two sequences
// aligned by construction.
func (s *Store) Append(vector []float32, chunk Chunk) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("%w: got %d, store dimension %d", ErrDimensionMismatch, len(vector), s.dimension)
	}
	s.vectors = append(s.vectors, vector)
	s.chunks = append(s.chunks, chunk)
	return nil
}

// Len returns the number of stored pairs.
func (s *Store) Len() int { return len(s.chunks) }

// BuildID returns the identifier stamped on both persisted artifacts.
func (s *Store) BuildID() string { return s.buildID }

// Dimension returns the embedding dimension.
func (s *Store) Dimension() int { return s.dimension }

// Chunk returns the chunk at index i.
func (s *Store) Chunk(i int) Chunk { return s.chunks[i] }

// Chunks returns the stored chunks in order.
func (s *Store) Chunks() []Chunk {
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Search returns the indices of the k nearest vectors by squared L2
// distance, most similar first. The result always has length k; when
// fewer than k pairs exist the tail is padded with NoMatch. Ties break
// by ascending index so results are deterministic.
//
// The query must come from the same embedding model the store was
// built with; that precondition is not checked here.
func (s *Store) Search(query []float32, k int) []int {
	if k <= 0 {
		return nil
	}

	result := make([]int, k)
	for i := range result {
		result[i] = NoMatch
	}
	if len(s.vectors) == 0 || len(query) != s.dimension {
		return result
	}

	type scored struct {
		index int
		dist  float32
	}
	candidates := make([]scored, len(s.vectors))
	for i, vec := range s.vectors {
		var dist float32
		for d := range vec {
			diff := vec[d] - query[d]
			dist += diff * diff
		}
		candidates[i] = scored{index: i, dist: dist}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].dist != candidates[b].dist {
			return candidates[a].dist < candidates[b].dist
		}
		return candidates[a].index < candidates[b].index
	})

	for i := 0; i < k && i < len(candidates); i++ {
		result[i] = candidates[i].index
	}
	return result
}

// vectorArtifact is the on-disk form of the vector index.
type vectorArtifact struct {
	Version   int
	BuildID   string
	Dimension int
	Vectors   [][]float32
}

// chunkArtifact is the on-disk form of the chunk list.
type chunkArtifact struct {
	Version int     `json:"version"`
	BuildID string  `json:"build_id"`
	Chunks  []Chunk `json:"chunks"`
}

// Save persists both artifacts to dir as a matched pair. Each artifact
// is staged to a temporary file and renamed into place, and both carry
// the store's build ID, so a torn write is detected at load time
// instead of serving a misaligned store.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	vecTmp := filepath.Join(dir, vectorsFile+".tmp")
	f, err := os.Create(vecTmp)
	if err != nil {
		return fmt.Errorf("staging vector artifact: %w", err)
	}
	err = gob.NewEncoder(f).Encode(vectorArtifact{
		Version:   storeFormatVersion,
		BuildID:   s.buildID,
		Dimension: s.dimension,
		Vectors:   s.vectors,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(vecTmp)
		return fmt.Errorf("writing vector artifact: %w", err)
	}

	chunkTmp := filepath.Join(dir, chunksFile+".tmp")
	data, err := json.MarshalIndent(chunkArtifact{
		Version: storeFormatVersion,
		BuildID: s.buildID,
		Chunks:  s.chunks,
	}, "", "  ")
	if err != nil {
		os.Remove(vecTmp)
		return fmt.Errorf("encoding chunk artifact: %w", err)
	}
	if err := os.WriteFile(chunkTmp, data, 0o644); err != nil {
		os.Remove(vecTmp)
		return fmt.Errorf("staging chunk artifact: %w", err)
	}

	if err := os.Rename(vecTmp, filepath.Join(dir, vectorsFile)); err != nil {
		os.Remove(vecTmp)
		os.Remove(chunkTmp)
		return fmt.Errorf("publishing vector artifact: %w", err)
	}
	if err := os.Rename(chunkTmp, filepath.Join(dir, chunksFile)); err != nil {
		os.Remove(chunkTmp)
		return fmt.Errorf("publishing chunk artifact: %w", err)
	}
	return nil
}

// LoadStore loads a persisted store from dir, verifying that the two
// artifacts form a matched pair before serving any of it.
func LoadStore(dir string) (*Store, error) {
	f, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("opening vector artifact: %w", err)
	}
	defer f.Close()

	var vecs vectorArtifact
	if err := gob.NewDecoder(f).Decode(&vecs); err != nil {
		return nil, fmt.Errorf("decoding vector artifact: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, fmt.Errorf("opening chunk artifact: %w", err)
	}
	var chunks chunkArtifact
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decoding chunk artifact: %w", err)
	}

	if vecs.Version != storeFormatVersion || chunks.Version != storeFormatVersion {
		return nil, fmt.Errorf("%w: vectors v%d, chunks v%d", ErrStoreVersion, vecs.Version, chunks.Version)
	}
	if vecs.BuildID != chunks.BuildID {
		return nil, fmt.Errorf("%w: vector build %q, chunk build %q", ErrStoreMisaligned, vecs.BuildID, chunks.BuildID)
	}
	if len(vecs.Vectors) != len(chunks.Chunks) {
		return nil, fmt.Errorf("%w: %d vectors, %d chunks", ErrStoreMisaligned, len(vecs.Vectors), len(chunks.Chunks))
	}

	return &Store{
		buildID:   vecs.BuildID,
		dimension: vecs.Dimension,
		vectors:   vecs.Vectors,
		chunks:    chunks.Chunks,
	}, nil
}
