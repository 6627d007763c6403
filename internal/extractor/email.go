package extractor

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"

	"document-qa/internal/models"
)

// extractEmail parses headers and the plain-text body part(s) of a possibly
// multipart message. HTML-only messages are tag-stripped as a fallback.
func (e *Extractor) extractEmail(data []byte) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{Metadata: map[string]string{}}

	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("email parse failed, decoding raw bytes")
		doc.Text = cleanText(decodeLenient(data))
		return doc
	}

	doc.Metadata["subject"] = decodeHeader(msg.Header.Get("Subject"))
	doc.Metadata["from"] = decodeHeader(msg.Header.Get("From"))
	doc.Metadata["to"] = decodeHeader(msg.Header.Get("To"))
	doc.Metadata["date"] = msg.Header.Get("Date")

	body := extractMailBody(msg)

	var b strings.Builder
	for _, h := range []struct{ label, key string }{
		{"From", "from"}, {"To", "to"}, {"Date", "date"}, {"Subject", "subject"},
	} {
		if v := doc.Metadata[h.key]; v != "" {
			b.WriteString(h.label)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(body)

	doc.Text = cleanText(b.String())
	return doc
}

func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

func extractMailBody(msg *mail.Message) string {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		body, _ := io.ReadAll(msg.Body)
		return string(body)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(msg.Body, params["boundary"])
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return ""
	}
	if mediaType == "text/html" {
		return stripHTMLTags(string(body))
	}
	return string(body)
}

func extractMultipartBody(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		content, readErr := io.ReadAll(part)
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTMLTags(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested := extractMultipartBody(bytes.NewReader(content), params["boundary"]); nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	// Plain text wins over HTML.
	if len(textParts) > 0 {
		return strings.Join(textParts, "\n")
	}
	return strings.Join(htmlParts, "\n")
}

func stripHTMLTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	var cleaned []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
