package vectorindex

import (
	"errors"
	"math"
	"sort"
)

// Index is a flat, append-only nearest-neighbor structure over Euclidean
// distance. Row i always corresponds to the i-th vector added; there is no
// deletion — an index lives for one document-processing session and is
// rebuilt rather than mutated.
type Index struct {
	dimension int
	vectors   [][]float32
}

// Match is one nearest-neighbor result.
type Match struct {
	Position int
	Distance float64
}

func New(dimension int) *Index {
	return &Index{dimension: dimension}
}

// Len reports the number of stored vectors.
func (ix *Index) Len() int { return len(ix.vectors) }

// Dimension reports the fixed vector width.
func (ix *Index) Dimension() int { return ix.dimension }

// Add appends vectors in order. Every vector must match the index width;
// the caller (the session builder) guarantees this via the embedding
// service's dimension fitting.
func (ix *Index) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return errors.New("vectorindex: vector dimension mismatch")
		}
	}
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns up to k matches ordered by ascending Euclidean distance.
// An empty index yields an empty result, not an error.
func (ix *Index) Search(query []float32, k int) []Match {
	if len(ix.vectors) == 0 || k <= 0 {
		return nil
	}

	matches := make([]Match, len(ix.vectors))
	for i, v := range ix.vectors {
		matches[i] = Match{Position: i, Distance: l2Distance(query, v)}
	}
	sort.Slice(matches, func(a, b int) bool { return matches[a].Distance < matches[b].Distance })

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

func l2Distance(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
