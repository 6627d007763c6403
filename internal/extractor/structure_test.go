package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line  string
		level int
	}{
		{"SECTION TWO:", 2},
		{"Definitions:", 2},
		{"POLICY SCHEDULE", 1},
		{"1. Scope of Cover", 3},
		{"This is an ordinary body sentence", 0},
		{"", 0},
		{"2nd item without dot", 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.level, headingLevel(tt.line))
		})
	}
}

func TestAnalyzeStructure(t *testing.T) {
	text := "TITLE\n" +
		"Opening paragraph with the introduction.\n" +
		"SECTION TWO:\n" +
		"Body of the second section.\n" +
		"More body text."

	sections := analyzeStructure(text)
	require.Len(t, sections, 2)

	assert.Equal(t, "TITLE", sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, "Opening paragraph with the introduction.", sections[0].Content)

	assert.Equal(t, "SECTION TWO:", sections[1].Title)
	assert.Equal(t, 2, sections[1].Level)
	assert.Contains(t, sections[1].Content, "Body of the second section.")
	assert.Contains(t, sections[1].Content, "More body text.")
}

func TestAnalyzeStructureLeadingBody(t *testing.T) {
	sections := analyzeStructure("Preamble before any heading.\nHEADING\nContent under it.")
	require.Len(t, sections, 2)
	assert.Empty(t, sections[0].Title)
	assert.Equal(t, "Preamble before any heading.", sections[0].Content)
	assert.Equal(t, "HEADING", sections[1].Title)
}

func TestCleanText(t *testing.T) {
	in := "Hello   world\t here\n42\n•bullet point\n·another one"
	out := cleanText(in)
	assert.Equal(t, "Hello world here\n• bullet point\n• another one", out)
}

func TestDecodeLenient(t *testing.T) {
	in := []byte("ok\x00\xffline\ttab\nnext")
	assert.Equal(t, "okline\ttab\nnext", decodeLenient(in))
}
