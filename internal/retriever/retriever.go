package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"document-qa/internal/embedding"
	"document-qa/internal/models"
	"document-qa/internal/vectorindex"
)

// Retriever answers queries against a completed index. It holds read-only
// references to the session's chunk list and vector index; nothing here
// mutates either, so concurrent searches need no locking.
type Retriever struct {
	embedder *embedding.Service
	index    *vectorindex.Index
	chunks   []models.Chunk
}

func New(embedder *embedding.Service, index *vectorindex.Index, chunks []models.Chunk) *Retriever {
	return &Retriever{embedder: embedder, index: index, chunks: chunks}
}

// Search returns up to k results ordered by descending score. The vector
// path converts Euclidean distance to similarity via max(0, 1 - d/2); when
// the index is empty or the query embeds to a zero vector, lexical keyword
// overlap takes over. No chunks at all yields an empty slice, never an error.
func (r *Retriever) Search(ctx context.Context, query string, k int) []models.RetrievalResult {
	if len(r.chunks) == 0 {
		log.Warn().Msg("no chunks available for search")
		return nil
	}

	if r.index.Len() == 0 {
		return r.lexicalSearch(query, k)
	}

	vec := r.embedder.EmbedQuery(ctx, query)
	if isZero(vec) {
		log.Debug().Msg("query embedded to zero vector, falling back to lexical search")
		return r.lexicalSearch(query, k)
	}

	matches := r.index.Search(vec, k)
	results := make([]models.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		if m.Position >= len(r.chunks) {
			continue
		}
		score := 1 - m.Distance/2
		if score < 0 {
			score = 0
		}
		results = append(results, models.RetrievalResult{
			Chunk:      r.chunks[m.Position],
			Score:      score,
			Distance:   m.Distance,
			Source:     models.SourceVector,
			Confidence: 0.8,
		})
	}

	log.Debug().Int("results", len(results)).Str("query", truncate(query, 50)).Msg("vector search completed")
	return results
}

// lexicalSearch scores each chunk by the share of query words it contains.
func (r *Retriever) lexicalSearch(query string, k int) []models.RetrievalResult {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	var results []models.RetrievalResult
	for _, chunk := range r.chunks {
		chunkWords := wordSet(chunk.Text)
		overlap := 0
		for w := range queryWords {
			if _, ok := chunkWords[w]; ok {
				overlap++
			}
		}
		score := float64(overlap) / float64(len(queryWords))
		if score <= 0 {
			continue
		}
		results = append(results, models.RetrievalResult{
			Chunk:      chunk,
			Score:      score,
			Distance:   1 - score,
			Source:     models.SourceLexical,
			Confidence: score,
		})
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if k < len(results) {
		results = results[:k]
	}

	log.Debug().Int("results", len(results)).Str("query", truncate(query, 50)).Msg("lexical search completed")
	return results
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
