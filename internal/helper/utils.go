package helper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// PrettyPrint writes v to stdout as indented JSON.
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Println(string(b))
}

// SplitQuestions parses a question list separated by newlines, semicolons or
// pipes, dropping empty entries.
func SplitQuestions(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ';' || r == '|'
	})
	var out []string
	for _, f := range fields {
		if q := strings.TrimSpace(f); q != "" {
			out = append(out, q)
		}
	}
	return out
}
