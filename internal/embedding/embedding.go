package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
)

// Embedder turns text into a vector. Satisfied by langchaingo's
// *embeddings.EmbedderImpl and by test fakes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service produces fixed-dimension vectors for chunks and queries. A remote
// provider is used for a small prefix of each batch to respect quota; the
// deterministic local embedding covers everything else and every failure, so
// embedding a text never fails to yield a full-width vector.
type Service struct {
	remote Embedder
	local  *LocalEmbedder
	cfg    config.EmbeddingConfig
}

// NewService builds the embedding service. Without an API key the service is
// fully local.
func NewService(cfg config.EmbeddingConfig) (*Service, error) {
	s := &Service{
		local: NewLocalEmbedder(cfg.Dimension),
		cfg:   cfg,
	}

	if cfg.LLM.Key != "" {
		remote, err := newRemoteEmbedder(cfg.LLM)
		if err != nil {
			return nil, err
		}
		s.remote = remote
		log.Info().Str("model", cfg.LLM.Model).Msg("remote embedding provider configured")
	} else {
		log.Info().Int("dimension", cfg.Dimension).Msg("no embedding API key, using local embeddings")
	}
	return s, nil
}

// NewServiceWithRemote injects a remote embedder directly; used by tests.
func NewServiceWithRemote(cfg config.EmbeddingConfig, remote Embedder) *Service {
	return &Service{
		remote: remote,
		local:  NewLocalEmbedder(cfg.Dimension),
		cfg:    cfg,
	}
}

func newRemoteEmbedder(llmCfg config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmCfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmCfg.Key, "Bearer ")),
		openai.WithModel(llmCfg.Model),
		openai.WithEmbeddingModel(llmCfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// Dimension is the fixed index width every produced vector matches.
func (s *Service) Dimension() int { return s.cfg.Dimension }

// EmbedChunks returns exactly one full-width vector per input text. At most
// RemoteBudget texts go through the remote provider; per-text remote
// failures are substituted locally and never abort the batch.
func (s *Service) EmbedChunks(ctx context.Context, texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))

	remoteBudget := 0
	if s.remote != nil {
		remoteBudget = min(s.cfg.RemoteBudget, len(texts))
	}

	for i, text := range texts {
		if i < remoteBudget {
			vec, err := s.remote.EmbedQuery(ctx, text)
			if err == nil {
				vectors[i] = s.fit(vec)
				continue
			}
			log.Warn().Err(err).Int("chunk", i).Msg("remote embedding failed, using local fallback")
		}
		vectors[i] = s.local.Embed(text)
	}

	log.Debug().Int("total", len(texts)).Int("remote", remoteBudget).Msg("chunk embeddings generated")
	return vectors
}

// EmbedQuery embeds a single query through the same provider chain.
func (s *Service) EmbedQuery(ctx context.Context, text string) []float32 {
	if s.remote != nil {
		vec, err := s.remote.EmbedQuery(ctx, text)
		if err == nil {
			return s.fit(vec)
		}
		log.Warn().Err(err).Msg("remote query embedding failed, using local fallback")
	}
	return s.local.Embed(text)
}

// fit pads or truncates a provider vector to the index width.
func (s *Service) fit(vec []float32) []float32 {
	dim := s.cfg.Dimension
	if len(vec) == dim {
		return vec
	}
	fitted := make([]float32, dim)
	copy(fitted, vec)
	return fitted
}
