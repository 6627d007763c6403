package extractor

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"document-qa/internal/models"
)

// extractText decodes leniently. Markdown-looking input additionally gets
// sections from its heading structure instead of the line heuristics.
func (e *Extractor) extractText(data []byte) *models.ExtractedDocument {
	decoded := decodeLenient(data)
	doc := &models.ExtractedDocument{
		Text:     cleanText(decoded),
		Metadata: map[string]string{},
	}

	if looksLikeMarkdown(decoded) {
		if sections := markdownSections([]byte(decoded)); len(sections) > 0 {
			doc.Sections = sections
			doc.Metadata["structure"] = "markdown"
		}
	}
	return doc
}

func looksLikeMarkdown(text string) bool {
	return strings.HasPrefix(text, "#") || strings.Contains(text, "\n#")
}

// markdownSections walks the goldmark AST, opening a section per heading and
// accumulating the block text beneath it.
func markdownSections(src []byte) []models.Section {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var sections []models.Section
	current := models.Section{}

	flush := func() {
		if current.Content != "" || current.Title != "" {
			current.Content = strings.TrimSpace(current.Content)
			sections = append(sections, current)
		}
	}

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			current = models.Section{Title: blockLines(node, src), Level: node.Level}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock, *ast.CodeBlock, *ast.FencedCodeBlock:
			if text := blockLines(n, src); text != "" {
				current.Content += text + "\n"
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	flush()
	return sections
}

func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimSpace(b.String())
}
