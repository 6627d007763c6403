package extractor

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"document-qa/internal/models"
)

// extractPDF tries progressively cruder strategies until one yields enough
// text: per-page plain text, then positioned text spans, then a lenient
// decode of the raw bytes.
func (e *Extractor) extractPDF(data []byte) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{Metadata: map[string]string{}}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn().Err(err).Msg("pdf open failed, decoding raw bytes")
		doc.Text = cleanText(decodeLenient(data))
		return doc
	}

	text := pdfPlainText(reader)
	if len(text) < e.cfg.MinTextLength {
		log.Info().Int("chars", len(text)).Msg("plain-text pass too short, trying content spans")
		text = pdfContentText(reader)
	}
	if len(text) < e.cfg.MinTextLength {
		log.Info().Int("chars", len(text)).Msg("content-span pass too short, decoding raw bytes")
		text = decodeLenient(data)
	}

	doc.Text = cleanText(text)
	doc.Metadata["pages"] = strconv.Itoa(reader.NumPage())
	return doc
}

// pdfPlainText is the primary strategy: page-by-page plain text.
func pdfPlainText(reader *pdf.Reader) string {
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("page text extraction failed")
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			b.WriteString(pageText)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// pdfContentText reassembles text from positioned spans, starting a new
// line whenever the vertical position moves.
func pdfContentText(reader *pdf.Reader) string {
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		var lastY float64
		for _, span := range page.Content().Text {
			if lastY != 0 && span.Y != lastY {
				b.WriteString("\n")
			} else if b.Len() > 0 && lastY != 0 {
				b.WriteString(" ")
			}
			b.WriteString(span.S)
			lastY = span.Y
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

