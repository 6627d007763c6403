package answer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"document-qa/internal/cache"
	"document-qa/internal/config"
	"document-qa/internal/models"
)

// Generator produces an answer for one question from retrieved context.
// Every failure path degrades to an explanatory answer; Generate never
// returns an error or panics past its boundary.
type Generator struct {
	provider  Provider
	gate      *Gate
	cache     *cache.Cache
	cfg       config.AnswerConfig
	templates []models.AnswerTemplate
}

// NewGenerator wires the generator. provider may be nil (local-only mode);
// a nil template table selects the default one.
func NewGenerator(provider Provider, answerCache *cache.Cache, cfg config.AnswerConfig, templates []models.AnswerTemplate) *Generator {
	if templates == nil {
		templates = models.AnswerTemplates
	}
	return &Generator{
		provider:  provider,
		gate:      NewGate(cfg.MinCallInterval),
		cache:     answerCache,
		cfg:       cfg,
		templates: templates,
	}
}

// Generate runs the gated answer flow: empty-context check, cache lookup,
// context selection, provider call with local fallback, confidence scoring,
// citation extraction, and caching of the produced text.
func (g *Generator) Generate(ctx context.Context, question string, results []models.RetrievalResult) (res models.AnswerResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("question", truncate(question, 80)).Msg("answer generation panicked")
			res = models.AnswerResult{
				Answer:         fmt.Sprintf("I apologize, but I was unable to generate a response due to a technical issue: %v", r),
				GenerationTime: time.Since(start),
			}
		}
	}()

	if !hasContext(results) {
		return models.AnswerResult{Answer: models.CannotFindAnswer, GenerationTime: time.Since(start)}
	}

	fullContext := concatContext(results)
	key := g.cacheKey(question, fullContext)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			log.Debug().Str("question", truncate(question, 80)).Msg("answer cache hit")
			return models.AnswerResult{
				Answer:         cached,
				Confidence:     0.8,
				Cached:         true,
				GenerationTime: time.Since(start),
			}
		}
	}

	selected := g.selectContext(question, results)
	contextText := joinTexts(selected)
	prompt := fmt.Sprintf(models.PromptTemplate, contextText, question)

	answerText, model := g.generate(ctx, question, prompt, contextText)

	confidence := g.confidence(answerText, contextText, question)
	var citations []string
	if answerText == models.CannotFindAnswer {
		confidence = 0
	} else {
		citations = extractCitations(selected)
		if g.cache != nil {
			g.cache.Set(key, answerText, g.cfg.AnswerCacheTTL)
		}
	}

	return models.AnswerResult{
		Answer:         answerText,
		Confidence:     confidence,
		Citations:      citations,
		Model:          model,
		GenerationTime: time.Since(start),
	}
}

// generate calls the provider behind the rate gate, falling back to the
// local rule-based responder on any failure.
func (g *Generator) generate(ctx context.Context, question, prompt, contextText string) (string, string) {
	if g.provider != nil {
		if err := g.gate.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("rate gate interrupted")
			return g.fallback(question, contextText), "local_fallback"
		}
		answerText, err := g.provider.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(answerText) != "" {
			return answerText, g.cfg.LLM.Model
		}
		log.Warn().Err(err).Msg("generation provider failed, using local fallback")
	}
	return g.fallback(question, contextText), "local_fallback"
}

// fallback synthesizes an answer without the provider: a template whose
// keywords all appear in the question wins; otherwise a context snippet is
// returned when relevance clears the floor, and the fixed cannot-find answer
// when it does not.
func (g *Generator) fallback(question, contextText string) string {
	questionLower := strings.ToLower(question)
	contextLower := strings.ToLower(contextText)

	for _, tmpl := range g.templates {
		matched := true
		for _, kw := range tmpl.Keywords {
			if !strings.Contains(questionLower, kw) {
				matched = false
				break
			}
		}
		if matched && strings.Contains(contextLower, tmpl.Keywords[0]) {
			return tmpl.Answer
		}
	}

	if overlapRatio(question, contextText) < g.cfg.RelevanceFloor {
		return models.CannotFindAnswer
	}
	return "According to the document: " + truncate(strings.TrimSpace(contextText), g.cfg.MaxContextLength)
}

// selectContext keeps the top MaxContextChunks results by question overlap,
// each truncated to MaxContextLength characters.
func (g *Generator) selectContext(question string, results []models.RetrievalResult) []models.RetrievalResult {
	scored := make([]models.RetrievalResult, len(results))
	copy(scored, results)
	sort.SliceStable(scored, func(a, b int) bool {
		return overlapRatio(question, scored[a].Chunk.Text) > overlapRatio(question, scored[b].Chunk.Text)
	})

	if len(scored) > g.cfg.MaxContextChunks {
		scored = scored[:g.cfg.MaxContextChunks]
	}
	for i := range scored {
		scored[i].Chunk.Text = truncate(scored[i].Chunk.Text, g.cfg.MaxContextLength)
	}
	return scored
}

// confidence is the heuristic score from the answer/context shape, capped at
// 0.95 and floored at 0.1 when either side is missing.
func (g *Generator) confidence(answerText, contextText, question string) float64 {
	if strings.TrimSpace(answerText) == "" || strings.TrimSpace(contextText) == "" {
		return 0.1
	}

	confidence := 0.5
	if len(strings.Fields(answerText)) >= 20 {
		confidence += 0.2
	}
	if len(strings.Fields(contextText)) >= 100 {
		confidence += 0.2
	}
	confidence += overlapRatio(question, answerText) * 0.1

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func (g *Generator) cacheKey(question, fullContext string) string {
	h := sha256.New()
	h.Write([]byte(question))
	h.Write([]byte{0})
	h.Write([]byte(truncate(fullContext, g.cfg.CacheKeyContext)))
	return "answer:" + hex.EncodeToString(h.Sum(nil))
}

// extractCitations returns the distinct doc ids of the used chunks in
// first-seen order.
func extractCitations(selected []models.RetrievalResult) []string {
	var citations []string
	seen := make(map[string]struct{})
	for _, r := range selected {
		id := r.Chunk.DocID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		citations = append(citations, id)
	}
	return citations
}

func hasContext(results []models.RetrievalResult) bool {
	for _, r := range results {
		if strings.TrimSpace(r.Chunk.Text) != "" {
			return true
		}
	}
	return false
}

func concatContext(results []models.RetrievalResult) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Chunk.Text)
	}
	return b.String()
}

func joinTexts(results []models.RetrievalResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.Chunk.Text) != "" {
			texts = append(texts, r.Chunk.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

func overlapRatio(question, text string) float64 {
	qWords := wordSet(question)
	if len(qWords) == 0 {
		return 0
	}
	tWords := wordSet(text)
	overlap := 0
	for w := range qWords {
		if _, ok := tWords[w]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(qWords))
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
