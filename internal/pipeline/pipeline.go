package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"document-qa/internal/answer"
	"document-qa/internal/cache"
	"document-qa/internal/chunker"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/extractor"
	"document-qa/internal/fetcher"
	"document-qa/internal/models"
	"document-qa/internal/retriever"
	"document-qa/internal/vectorindex"
)

// Session owns the state for one document-processing request: the chunk
// list and vector index are written once during the build phase and only
// read afterwards, so the concurrent question phase needs no locking.
type Session struct {
	cfg       *config.Config
	fetcher   *fetcher.Fetcher
	extractor *extractor.Extractor
	chunker   *chunker.Chunker
	embedder  *embedding.Service
	generator *answer.Generator
	cache     *cache.Cache

	index  *vectorindex.Index
	chunks []models.Chunk
}

// NewSession wires a session from config. Remote providers are only
// constructed when their API keys are present; everything degrades to the
// local paths otherwise.
func NewSession(cfg *config.Config) (*Session, error) {
	embedder, err := embedding.NewService(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("init embedding service: %w", err)
	}

	var provider answer.Provider
	if cfg.Answer.LLM.Key != "" {
		p, err := answer.NewOpenAIProvider(cfg.Answer.LLM)
		if err != nil {
			return nil, fmt.Errorf("init generation provider: %w", err)
		}
		provider = p
	}

	return NewSessionWith(cfg, embedder, provider, cache.New(cfg.Cache.MaxSizeMB, cfg.Cache.DefaultTTL)), nil
}

// NewSessionWith injects collaborators directly; used by tests and by
// callers sharing a cache across sessions.
func NewSessionWith(cfg *config.Config, embedder *embedding.Service, provider answer.Provider, answerCache *cache.Cache) *Session {
	return &Session{
		cfg:       cfg,
		fetcher:   fetcher.New(cfg.Fetch),
		extractor: extractor.New(cfg.Extract),
		chunker:   chunker.New(cfg.Chunking, nil),
		embedder:  embedder,
		generator: answer.NewGenerator(provider, answerCache, cfg.Answer, nil),
		cache:     answerCache,
		index:     vectorindex.New(cfg.Embedding.Dimension),
	}
}

// Process downloads and indexes the document, then answers every question
// concurrently. Only a document-fetch failure aborts the request; every
// other failure surfaces as an explanatory string in that question's slot.
func (s *Session) Process(ctx context.Context, documentURL string, questions []string) ([]string, error) {
	requestID := uuid.NewString()
	log.Info().Str("request_id", requestID).Str("url", documentURL).Int("questions", len(questions)).Msg("processing request")

	data, err := s.fetcher.Fetch(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	doc := s.extractor.Extract(data, formatFromURL(documentURL))
	docID := requestID + "_doc"
	s.buildIndex(ctx, docID, doc)

	r := retriever.New(s.embedder, s.index, s.chunks)

	answers := make([]string, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Answer.MaxConcurrent)
	for i, question := range questions {
		g.Go(func() error {
			answers[i] = s.answerQuestion(gctx, r, i, question)
			return nil
		})
	}
	// Tasks never return errors; failures land in their answer slot.
	_ = g.Wait()

	log.Info().Str("request_id", requestID).Msg("request completed")
	return answers, nil
}

// buildIndex is the single-writer build phase: chunk ids are assigned by
// position and vectors appended in the same order, which keeps chunk i and
// index row i in correspondence.
func (s *Session) buildIndex(ctx context.Context, docID string, doc *models.ExtractedDocument) {
	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		log.Warn().Str("doc_id", docID).Msg("no chunks created for document")
		return
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s_%d", docID, i)
		chunks[i].DocID = docID
		texts[i] = chunks[i].Text
	}

	vectors := s.embedder.EmbedChunks(ctx, texts)
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	if err := s.index.Add(vectors); err != nil {
		// The embedding service fits every vector to the index width, so
		// this only fires on programmer error.
		log.Error().Err(err).Msg("index build failed")
		return
	}
	s.chunks = append(s.chunks, chunks...)

	log.Info().Str("doc_id", docID).Int("chunks", len(chunks)).Msg("index built")
}

func (s *Session) answerQuestion(ctx context.Context, r *retriever.Retriever, i int, question string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Int("question", i+1).Msg("question task panicked")
			out = fmt.Sprintf("Processing failed for question %d: %v", i+1, rec)
		}
	}()

	results := r.Search(ctx, question, s.cfg.Answer.RetrievalTopK)
	result := s.generator.Generate(ctx, question, results)

	text := strings.TrimSpace(result.Answer)
	if len(text) < 10 {
		return models.CannotFindAnswer
	}
	return text
}

// Close releases session resources. Indices are in-memory only, so this
// just drops the references and clears the per-session cache.
func (s *Session) Close() {
	s.chunks = nil
	s.index = nil
	if s.cache != nil {
		s.cache.Clear()
	}
}

func formatFromURL(documentURL string) models.Format {
	cleaned := documentURL
	if u, err := url.Parse(documentURL); err == nil {
		cleaned = u.Path
	}
	switch strings.ToLower(path.Ext(cleaned)) {
	case ".pdf":
		return models.FormatPDF
	case ".docx":
		return models.FormatDOCX
	case ".eml":
		return models.FormatEmail
	case ".xlsx":
		return models.FormatXLSX
	case ".ods":
		return models.FormatODS
	case ".txt", ".md", ".text":
		return models.FormatText
	default:
		return ""
	}
}
