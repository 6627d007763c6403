package models

import "time"

// Format identifies the declared or detected document format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatEmail Format = "email"
	FormatXLSX  Format = "xlsx"
	FormatODS   Format = "ods"
	FormatText  Format = "text"
)

// ChunkType tags how a chunk was produced.
type ChunkType string

const (
	ChunkSection        ChunkType = "section"
	ChunkParagraph      ChunkType = "paragraph"
	ChunkParagraphSplit ChunkType = "paragraph_split"
	ChunkSemantic       ChunkType = "semantic"
)

// RetrievalSource tags which search path produced a result.
type RetrievalSource string

const (
	SourceVector  RetrievalSource = "vector"
	SourceLexical RetrievalSource = "lexical"
)

// Section is a contiguous structurally-detected region of a document:
// a heading plus the body lines accumulated under it.
type Section struct {
	Title   string
	Content string
	Page    int // 0 when the format has no page information
	Level   int
}

// ImageResult holds recognized text for one embedded image.
type ImageResult struct {
	Page       int
	OCRText    string
	Confidence float64
}

// TableResult is a row-major string grid captured from a document.
type TableResult struct {
	Page int
	Data [][]string
}

// ProcessingMetadata records how an extraction went.
type ProcessingMetadata struct {
	ProcessingTime time.Duration
	QualityScore   float64
	Confidence     float64
	Format         Format
	Error          bool
	ErrorMessage   string
}

// ExtractedDocument is the normalized output of text extraction.
// It is produced once per raw document and not mutated afterward.
type ExtractedDocument struct {
	Text     string
	Sections []Section
	Images   []ImageResult
	Tables   []TableResult
	Metadata map[string]string
	Meta     ProcessingMetadata
}

// Chunk is the atomic retrieval unit: a bounded span of document text.
type Chunk struct {
	ID         string
	DocID      string
	Text       string
	Title      string
	Type       ChunkType
	Topic      string
	Importance float64
	Embedding  []float32
}

// RetrievalResult pairs a chunk with its relevance to one query.
type RetrievalResult struct {
	Chunk      Chunk
	Score      float64
	Distance   float64
	Source     RetrievalSource
	Confidence float64
}

// AnswerResult is the generator output for one question.
type AnswerResult struct {
	Answer         string
	Confidence     float64
	Citations      []string
	Model          string
	Cached         bool
	GenerationTime time.Duration
}
