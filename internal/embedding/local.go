package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// LocalEmbedder is the deterministic fallback: an L2-normalized hashed
// bag-of-words vector. It is cheap, offline, and stable across runs, which
// the retrieval tests and the quota-saving path rely on.
type LocalEmbedder struct {
	dimension int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	return &LocalEmbedder{dimension: dimension}
}

// Embed hashes each word longer than two characters into a fixed position
// and accumulates its frequency there, then normalizes the vector.
func (l *LocalEmbedder) Embed(text string) []float32 {
	vec := make([]float32, l.dimension)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) <= 2 {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%uint32(l.dimension)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec
}
