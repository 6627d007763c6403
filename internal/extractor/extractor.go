package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

// Extractor converts raw document bytes into a normalized ExtractedDocument.
// It never returns an error: every failure degrades into an error-flagged
// document so the pipeline can still answer with an explanation.
type Extractor struct {
	cfg config.ExtractConfig
}

func New(cfg config.ExtractConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract dispatches on the declared format, falling back to content
// sniffing when the declared format does not match the payload.
func (e *Extractor) Extract(data []byte, format models.Format) *models.ExtractedDocument {
	start := time.Now()

	doc := func() (doc *models.ExtractedDocument) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("extraction panicked")
				doc = e.errorDocument(fmt.Errorf("extraction panic: %v", r), format)
			}
		}()
		return e.dispatch(data, format)
	}()

	e.finalize(doc, data, format, start)
	return doc
}

func (e *Extractor) dispatch(data []byte, format models.Format) *models.ExtractedDocument {
	switch detectFormat(data, format) {
	case models.FormatPDF:
		return e.extractPDF(data)
	case models.FormatDOCX:
		return e.extractDOCX(data)
	case models.FormatEmail:
		return e.extractEmail(data)
	case models.FormatXLSX:
		return e.extractXLSX(data)
	case models.FormatODS:
		return e.extractODS(data)
	default:
		return e.extractText(data)
	}
}

// finalize applies the uniform post-processing: structural sectioning where
// the format pass left none, the quality gate, and one enhancement pass when
// the gate fails.
func (e *Extractor) finalize(doc *models.ExtractedDocument, data []byte, format models.Format, start time.Time) {
	if len(doc.Sections) == 0 && doc.Text != "" {
		doc.Sections = analyzeStructure(doc.Text)
	}

	score := e.qualityScore(doc)
	if score < e.cfg.QualityThreshold && !doc.Meta.Error {
		e.enhance(doc, data)
		score = e.qualityScore(doc)
	}

	doc.Meta.QualityScore = score
	doc.Meta.Confidence = extractionConfidence(doc)
	doc.Meta.Format = format
	doc.Meta.ProcessingTime = time.Since(start)

	log.Info().
		Str("format", string(format)).
		Int("text_len", len(doc.Text)).
		Int("sections", len(doc.Sections)).
		Int("tables", len(doc.Tables)).
		Float64("quality", score).
		Msg("document extracted")
}

// qualityScore is passed/attempted over four checks; a check is only
// attempted when its field carries data at all.
func (e *Extractor) qualityScore(doc *models.ExtractedDocument) float64 {
	var passed, attempted int

	if doc.Text != "" {
		attempted++
		if len(doc.Text) >= e.cfg.MinTextLength {
			passed++
		}
	}
	if len(doc.Sections) > 0 {
		attempted++
		passed++
	}
	if len(doc.Images) > 0 {
		attempted++
		for _, img := range doc.Images {
			if img.OCRText != "" {
				passed++
				break
			}
		}
	}
	if len(doc.Tables) > 0 {
		attempted++
		passed++
	}

	if attempted == 0 {
		return 0
	}
	return float64(passed) / float64(attempted)
}

// enhance is the last-resort pass for low-quality extractions: re-decode the
// raw payload leniently and re-run sectioning on whatever is printable.
func (e *Extractor) enhance(doc *models.ExtractedDocument, data []byte) {
	if len(doc.Text) >= e.cfg.MinTextLength*2 {
		return
	}
	log.Info().Msg("extraction quality below threshold, running enhancement pass")

	recovered := cleanText(decodeLenient(data))
	if len(recovered) > len(doc.Text) {
		doc.Text = recovered
		doc.Sections = analyzeStructure(recovered)
	}
}

func (e *Extractor) errorDocument(err error, format models.Format) *models.ExtractedDocument {
	return &models.ExtractedDocument{
		Text:     fmt.Sprintf("Error processing document: %v", err),
		Metadata: map[string]string{"error": err.Error()},
		Meta: models.ProcessingMetadata{
			Error:        true,
			ErrorMessage: err.Error(),
			Format:       format,
		},
	}
}

// extractionConfidence averages the available signal strengths.
func extractionConfidence(doc *models.ExtractedDocument) float64 {
	var sum float64
	var factors int

	if doc.Text != "" {
		sum += min(1, float64(len(doc.Text))/1000)
		factors++
	}
	if len(doc.Images) > 0 {
		var imgSum float64
		for _, img := range doc.Images {
			imgSum += img.Confidence
		}
		sum += imgSum / float64(len(doc.Images))
		factors++
	}
	if len(doc.Sections) > 0 {
		sum += min(1, float64(len(doc.Sections))/10)
		factors++
	}

	if factors == 0 {
		return 0.5
	}
	return sum / float64(factors)
}

// detectFormat trusts the declared format but sniffs magic bytes when the
// declaration is missing or plainly wrong.
func detectFormat(data []byte, declared models.Format) models.Format {
	switch declared {
	case models.FormatPDF, models.FormatDOCX, models.FormatEmail, models.FormatXLSX, models.FormatODS:
		return declared
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return models.FormatPDF
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return models.FormatDOCX
	}
	head := string(data[:min(len(data), 2048)])
	if strings.Contains(head, "From:") && strings.Contains(head, "Subject:") {
		return models.FormatEmail
	}
	return models.FormatText
}
