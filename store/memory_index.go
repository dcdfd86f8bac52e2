package store

import (
	"fmt"
	"math"
	"sort"

	"github.com/workmate-ai/assistant-be/types"
)

// Entry is a corpus snippet together with its embedding vector.
type Entry struct {
	Text   string
	Vector []float32
}

// Result is a search hit with its Euclidean distance to the query vector.
type Result struct {
	Entry    Entry
	Distance float64
}

// MemoryIndex is a brute-force in-memory nearest-neighbor index over a small
// fixed corpus. It is built once at startup and immutable afterwards, so
// concurrent Search calls need no locking.
type MemoryIndex struct {
	entries   []Entry
	dimension int
}

// BuildMemoryIndex constructs the index from the corpus entries. Rebuilding
// means calling this again with a full entry set; there is no incremental
// update.
func BuildMemoryIndex(entries []Entry) (*MemoryIndex, error) {
	if len(entries) == 0 {
		return nil, types.ErrEmptyIndex
	}
	dimension := len(entries[0].Vector)
	if dimension == 0 {
		return nil, fmt.Errorf("index entry %q has an empty vector", entries[0].Text)
	}
	for _, e := range entries {
		if len(e.Vector) != dimension {
			return nil, fmt.Errorf("index entry %q has dimension %d, want %d", e.Text, len(e.Vector), dimension)
		}
	}
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return &MemoryIndex{entries: copied, dimension: dimension}, nil
}

// Len returns the number of indexed entries.
func (ix *MemoryIndex) Len() int { return len(ix.entries) }

// Dimension returns the embedding dimensionality the index was built with.
func (ix *MemoryIndex) Dimension() int { return ix.dimension }

// Search returns the k nearest entries by Euclidean distance, closest first.
// Ties are broken by corpus insertion order so retrieval is deterministic.
func (ix *MemoryIndex) Search(vector []float32, k int) ([]Result, error) {
	if len(ix.entries) == 0 {
		return nil, types.ErrEmptyIndex
	}
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(vector), ix.dimension)
	}
	if k <= 0 {
		k = 1
	}
	if k > len(ix.entries) {
		k = len(ix.entries)
	}

	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{Entry: e, Distance: l2(e.Vector, vector)}
	}
	// SliceStable keeps insertion order among equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results[:k], nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
