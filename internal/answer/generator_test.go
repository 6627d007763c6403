package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/cache"
	"document-qa/internal/config"
	"document-qa/internal/models"
)

type fakeProvider struct {
	calls int
	resp  string
	err   error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.resp, f.err
}

func testAnswerCfg() config.AnswerConfig {
	cfg := config.Default().Answer
	cfg.MinCallInterval = 0
	return cfg
}

func graceResults() []models.RetrievalResult {
	return []models.RetrievalResult{
		{
			Chunk: models.Chunk{
				DocID: "doc-1",
				Text:  "A grace period of thirty days is provided for premium payment after the due date to renew the policy.",
			},
			Score: 0.9,
		},
		{
			Chunk: models.Chunk{
				DocID: "doc-1",
				Text:  "Room rent is capped at one percent of the sum insured under this policy.",
			},
			Score: 0.5,
		},
	}
}

func TestGenerateNoContext(t *testing.T) {
	g := NewGenerator(&fakeProvider{resp: "irrelevant"}, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "what is the grace period", nil)
	assert.Equal(t, models.CannotFindAnswer, res.Answer)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Citations)
}

func TestGenerateUsesProvider(t *testing.T) {
	provider := &fakeProvider{resp: "The grace period is thirty days from the premium due date for continued coverage under the policy terms described."}
	g := NewGenerator(provider, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "what is the grace period for premium payment", graceResults())

	assert.Equal(t, provider.resp, res.Answer)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, res.Cached)
	assert.Equal(t, []string{"doc-1"}, res.Citations)
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 0.95)
}

func TestGenerateCacheHitSkipsProvider(t *testing.T) {
	provider := &fakeProvider{resp: "The grace period is thirty days from the premium due date for continued coverage under the policy terms described."}
	g := NewGenerator(provider, cache.New(16, time.Hour), testAnswerCfg(), nil)

	question := "what is the grace period for premium payment"
	first := g.Generate(context.Background(), question, graceResults())
	require.False(t, first.Cached)

	second := g.Generate(context.Background(), question, graceResults())

	assert.Equal(t, 1, provider.calls)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.InDelta(t, 0.8, second.Confidence, 1e-9)
	assert.Empty(t, second.Citations)
}

func TestGenerateFallbackTemplate(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model unavailable")}
	g := NewGenerator(provider, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "What is the grace period for premium payment?", graceResults())

	assert.Contains(t, res.Answer, "thirty days")
	assert.Equal(t, "local_fallback", res.Model)
	assert.NotEqual(t, models.CannotFindAnswer, res.Answer)
}

func TestGenerateFallbackWithoutProvider(t *testing.T) {
	g := NewGenerator(nil, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "What is the grace period for premium payment?", graceResults())
	assert.Contains(t, res.Answer, "thirty days")
}

func TestGenerateFallbackCannotFind(t *testing.T) {
	g := NewGenerator(nil, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "Quelle heure est-il maintenant?", graceResults())

	assert.Equal(t, models.CannotFindAnswer, res.Answer)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Citations)
}

func TestGenerateCannotFindIsNotCached(t *testing.T) {
	c := cache.New(16, time.Hour)
	g := NewGenerator(nil, c, testAnswerCfg(), nil)

	g.Generate(context.Background(), "Quelle heure est-il maintenant?", graceResults())
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestGenerateFallbackSnippet(t *testing.T) {
	g := NewGenerator(nil, cache.New(16, time.Hour), testAnswerCfg(), nil)

	res := g.Generate(context.Background(), "what is the room rent capped at under this policy", graceResults())

	assert.True(t, strings.HasPrefix(res.Answer, "According to the document: "), res.Answer)
}

func TestConfidenceScoring(t *testing.T) {
	g := NewGenerator(nil, nil, testAnswerCfg(), nil)

	longAnswer := strings.Repeat("detailed answer words here ", 6)
	longContext := strings.Repeat("context words repeated over and over ", 20)

	tests := []struct {
		name    string
		answer  string
		context string
		min     float64
		max     float64
	}{
		{"empty answer", "", longContext, 0.1, 0.1},
		{"empty context", longAnswer, "", 0.1, 0.1},
		{"short both", "brief", "tiny context", 0.5, 0.6},
		{"long answer short context", longAnswer, "tiny context", 0.7, 0.8},
		{"long both", longAnswer, longContext, 0.89, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.confidence(tt.answer, tt.context, "unrelatedquestionword")
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestCacheKeyDependsOnContext(t *testing.T) {
	g := NewGenerator(nil, nil, testAnswerCfg(), nil)

	k1 := g.cacheKey("question", "context one")
	k2 := g.cacheKey("question", "context two")
	k3 := g.cacheKey("question", "context one")

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, "answer:"))
}
