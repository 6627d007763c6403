package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/config"
)

type fakeRemote struct {
	calls int
	vec   []float32
	err   error
}

func (f *fakeRemote) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

func testEmbedCfg() config.EmbeddingConfig {
	return config.EmbeddingConfig{Dimension: 16, RemoteBudget: 2}
}

func TestLocalEmbedDeterministic(t *testing.T) {
	l := NewLocalEmbedder(64)

	a := l.Embed("the grace period for premium payment is thirty days")
	b := l.Embed("the grace period for premium payment is thirty days")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestLocalEmbedNormalized(t *testing.T) {
	l := NewLocalEmbedder(64)
	vec := l.Embed("coverage benefits exclusions waiting period")

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestLocalEmbedIgnoresShortWords(t *testing.T) {
	l := NewLocalEmbedder(32)
	vec := l.Embed("a an is of to")
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedChunksRespectsRemoteBudget(t *testing.T) {
	remote := &fakeRemote{vec: []float32{1, 2, 3}}
	s := NewServiceWithRemote(testEmbedCfg(), remote)

	texts := []string{"one two three", "four five six", "seven eight nine", "ten eleven twelve"}
	vectors := s.EmbedChunks(context.Background(), texts)

	require.Len(t, vectors, len(texts))
	assert.Equal(t, 2, remote.calls)
	for _, v := range vectors {
		assert.Len(t, v, 16)
	}
	// Remote vectors get padded to the index width.
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(0), vectors[0][3])
}

func TestEmbedChunksFallsBackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{err: errors.New("quota exhausted")}
	s := NewServiceWithRemote(testEmbedCfg(), remote)

	vectors := s.EmbedChunks(context.Background(), []string{"premium payment details"})

	require.Len(t, vectors, 1)
	assert.Equal(t, NewLocalEmbedder(16).Embed("premium payment details"), vectors[0])
}

func TestEmbedChunksLocalOnly(t *testing.T) {
	s, err := NewService(testEmbedCfg())
	require.NoError(t, err)

	vectors := s.EmbedChunks(context.Background(), []string{"alpha beta", "gamma delta"})
	require.Len(t, vectors, 2)
	for _, v := range vectors {
		assert.Len(t, v, 16)
	}
}

func TestEmbedQueryFitsDimension(t *testing.T) {
	long := make([]float32, 32)
	for i := range long {
		long[i] = float32(i)
	}
	s := NewServiceWithRemote(testEmbedCfg(), &fakeRemote{vec: long})

	vec := s.EmbedQuery(context.Background(), "what is covered")
	assert.Len(t, vec, 16)
	assert.Equal(t, float32(15), vec[15])
}
