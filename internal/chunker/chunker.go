package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// Chunker splits extracted documents into retrieval units. Section-based
// chunking is preferred; paragraph accumulation is the fallback; a topic
// keyword pass always supplements the primary strategy.
type Chunker struct {
	cfg    config.ChunkingConfig
	topics []string
}

// New creates a chunker. A nil topic vocabulary selects the default one.
func New(cfg config.ChunkingConfig, topics []string) *Chunker {
	if topics == nil {
		topics = models.TopicVocabulary
	}
	return &Chunker{cfg: cfg, topics: topics}
}

// Chunk produces at most MaxChunks chunks for one document. Excess chunks
// are dropped from the tail.
func (c *Chunker) Chunk(doc *models.ExtractedDocument) []models.Chunk {
	var chunks []models.Chunk

	if len(doc.Sections) > 0 {
		chunks = c.sectionChunks(doc.Sections)
	} else {
		chunks = c.paragraphChunks(doc.Text)
	}

	chunks = append(chunks, c.semanticChunks(doc.Text)...)

	if len(chunks) > c.cfg.MaxChunks {
		log.Warn().
			Int("dropped", len(chunks)-c.cfg.MaxChunks).
			Int("cap", c.cfg.MaxChunks).
			Msg("chunk cap exceeded, dropping tail")
		chunks = chunks[:c.cfg.MaxChunks]
	}

	log.Debug().Int("chunks", len(chunks)).Msg("document chunked")
	return chunks
}

func (c *Chunker) sectionChunks(sections []models.Section) []models.Chunk {
	var chunks []models.Chunk
	for _, section := range sections {
		content := strings.TrimSpace(section.Content)
		if len(content) < c.cfg.MinTextLength {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       content,
			Title:      section.Title,
			Type:       models.ChunkSection,
			Importance: 0.8,
		})
	}
	return chunks
}

// paragraphChunks accumulates blank-line-separated paragraphs up to the
// character budget; a paragraph that alone exceeds the budget is split into
// fixed word-count sub-chunks.
func (c *Chunker) paragraphChunks(text string) []models.Chunk {
	var chunks []models.Chunk
	var current string

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, models.Chunk{
				Text:       trimmed,
				Title:      extractTitle(trimmed),
				Type:       models.ChunkParagraph,
				Importance: 0.8,
			})
		}
		current = ""
	}

	for _, para := range strings.Split(text, "\n\n") {
		if len(current)+len(para) > c.cfg.ChunkSize {
			if current != "" {
				flush()
				current = para
			} else {
				chunks = append(chunks, c.splitLongParagraph(para)...)
			}
			continue
		}
		if current == "" {
			current = para
		} else {
			current += "\n\n" + para
		}
	}
	flush()

	return chunks
}

func (c *Chunker) splitLongParagraph(para string) []models.Chunk {
	words := strings.Fields(para)
	if len(words) <= c.cfg.SplitWordCount {
		return []models.Chunk{{
			Text:       strings.TrimSpace(para),
			Title:      extractTitle(para),
			Type:       models.ChunkParagraph,
			Importance: 0.8,
		}}
	}

	var chunks []models.Chunk
	for i := 0; i < len(words); i += c.cfg.SplitWordCount {
		end := min(i+c.cfg.SplitWordCount, len(words))
		text := strings.Join(words[i:end], " ")
		if len(strings.TrimSpace(text)) < c.cfg.MinTextLength {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       text,
			Title:      fmt.Sprintf("Paragraph %d", i/c.cfg.SplitWordCount+1),
			Type:       models.ChunkParagraphSplit,
			Importance: 0.7,
		})
	}
	return chunks
}

// semanticChunks collects up to three sentences per vocabulary topic into a
// bonus high-importance chunk tagged with that topic.
func (c *Chunker) semanticChunks(text string) []models.Chunk {
	sentences := sentenceSplitRe.Split(text, -1)
	lower := make([]string, len(sentences))
	for i, s := range sentences {
		lower[i] = strings.ToLower(s)
	}

	var chunks []models.Chunk
	for _, topic := range c.topics {
		var matched []string
		for i, s := range sentences {
			trimmed := strings.TrimSpace(s)
			if len(trimmed) > 20 && strings.Contains(lower[i], topic) {
				matched = append(matched, trimmed)
				if len(matched) == 3 {
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		combined := strings.Join(matched, " ")
		if len(combined) < c.cfg.MinTextLength {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       combined,
			Title:      fmt.Sprintf("Information about %s", topic),
			Type:       models.ChunkSemantic,
			Topic:      topic,
			Importance: 0.9,
		})
	}
	return chunks
}

// extractTitle picks a heading-looking line from the first lines of a chunk.
func extractTitle(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i >= 3 {
			break
		}
		line = strings.TrimSpace(line)
		if line != "" && len(line) < 100 && !strings.HasSuffix(line, ".") {
			return line
		}
	}
	return "Untitled"
}
