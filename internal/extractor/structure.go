package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"document-qa/internal/models"
)

const maxHeadingLength = 100

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+\.`)
	pageNumberLineRe  = regexp.MustCompile(`^\d+$`)
	bulletRe          = regexp.MustCompile(`^[•·▪▫]\s*`)
	spaceRunRe        = regexp.MustCompile(`[ \t]+`)
)

// cleanText normalizes whitespace within lines, strips bare page-number
// lines and normalizes bullet glyphs. Line boundaries are preserved so the
// heading heuristics still have lines to look at.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if pageNumberLineRe.MatchString(line) {
			continue
		}
		line = bulletRe.ReplaceAllString(line, "• ")
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// analyzeStructure splits text into sections: a short line that is all
// uppercase, ends with a colon, or starts with "<number>." opens a new
// section; everything else accumulates under the most recent heading.
func analyzeStructure(text string) []models.Section {
	var sections []models.Section
	current := models.Section{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if level := headingLevel(line); level > 0 && utf8.RuneCountInString(line) < maxHeadingLength {
			if current.Content != "" {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, current)
			}
			current = models.Section{Title: line, Level: level}
			continue
		}
		current.Content += line + "\n"
	}

	if current.Content != "" {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, current)
	}
	return sections
}

// headingLevel returns 0 for body lines. The colon rule is checked before
// the uppercase rule so that "SECTION TWO:" classifies as a colon heading.
func headingLevel(line string) int {
	switch {
	case strings.HasSuffix(line, ":"):
		return 2
	case isAllUpper(line):
		return 1
	case numberedHeadingRe.MatchString(line):
		return 3
	default:
		return 0
	}
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// decodeLenient converts possibly-invalid bytes into a printable string,
// replacing anything that is not valid UTF-8 text.
func decodeLenient(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
