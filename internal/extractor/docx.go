package extractor

import (
	"bytes"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"

	"document-qa/internal/models"
)

// extractDOCX concatenates non-empty paragraph text and captures embedded
// tables as row-major string grids.
func (e *Extractor) extractDOCX(data []byte) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{Metadata: map[string]string{}}

	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn().Err(err).Msg("docx open failed, decoding raw bytes")
		doc.Text = cleanText(decodeLenient(data))
		return doc
	}
	defer r.Close()

	content := r.Editable().GetContent()

	var b strings.Builder
	for _, para := range splitXMLBlocks(content, "<w:p ", "<w:p>", "</w:p>") {
		text := strings.TrimSpace(xmlRunText(para))
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}
	doc.Text = cleanText(b.String())

	for _, tbl := range splitXMLBlocks(content, "<w:tbl ", "<w:tbl>", "</w:tbl>") {
		var grid [][]string
		for _, row := range splitXMLBlocks(tbl, "<w:tr ", "<w:tr>", "</w:tr>") {
			var cells []string
			for _, cell := range splitXMLBlocks(row, "<w:tc ", "<w:tc>", "</w:tc>") {
				cells = append(cells, strings.TrimSpace(xmlRunText(cell)))
			}
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
		}
		if len(grid) > 0 {
			doc.Tables = append(doc.Tables, models.TableResult{Page: 1, Data: grid})
		}
	}

	return doc
}

// splitXMLBlocks returns the contents between each open/close tag pair.
// Both the attributed ("<w:p ...>") and bare ("<w:p>") forms are handled.
func splitXMLBlocks(content, openAttr, open, close string) []string {
	var blocks []string
	rest := content
	for {
		idx := strings.Index(rest, openAttr)
		if bare := strings.Index(rest, open); bare >= 0 && (idx < 0 || bare < idx) {
			idx = bare
		}
		if idx < 0 {
			return blocks
		}
		rest = rest[idx:]
		end := strings.Index(rest, close)
		if end < 0 {
			return blocks
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end+len(close):]
	}
}

// xmlRunText pulls the text runs (<w:t> elements) out of a WordprocessingML
// fragment.
func xmlRunText(fragment string) string {
	var b strings.Builder
	rest := fragment
	for {
		idx := strings.Index(rest, "<w:t")
		if idx < 0 {
			break
		}
		rest = rest[idx:]
		gt := strings.Index(rest, ">")
		if gt < 0 {
			break
		}
		// Skip self-closing runs and non-<w:t> tags like <w:tab/>.
		tag := rest[:gt+1]
		rest = rest[gt+1:]
		if !strings.HasPrefix(tag, "<w:t>") && !strings.HasPrefix(tag, "<w:t ") {
			continue
		}
		if strings.HasSuffix(tag, "/>") {
			continue
		}
		end := strings.Index(rest, "</w:t>")
		if end < 0 {
			break
		}
		b.WriteString(unescapeXML(rest[:end]))
		b.WriteString(" ")
		rest = rest[end:]
	}
	return b.String()
}

var xmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func unescapeXML(s string) string {
	return xmlEntityReplacer.Replace(s)
}
