package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/cache"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/fetcher"
	"document-qa/internal/models"
)

const policyText = `POLICY TERMS AND CONDITIONS
This document sets out the terms and conditions applicable to the health insurance policy issued to the insured person.

Grace Period:
A grace period of thirty days is provided for premium payment after the due date to renew or continue the policy without losing continuity benefits.

Room Rent:
The daily room rent is capped at one percent of the sum insured for each day of hospitalization under this policy.
`

func testSession(t *testing.T, cfg *config.Config) *Session {
	t.Helper()
	embedder, err := embedding.NewService(cfg.Embedding)
	require.NoError(t, err)
	return NewSessionWith(cfg, embedder, nil, cache.New(16, time.Hour))
}

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Fetch.MaxRetries = 1
	cfg.Fetch.BackoffBase = time.Millisecond
	return cfg
}

func TestProcessAnswersQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(policyText))
	}))
	defer srv.Close()

	session := testSession(t, fastConfig())
	defer session.Close()

	questions := []string{
		"What is the grace period for premium payment?",
		"Zebra quantum currencies?",
	}
	answers, err := session.Process(context.Background(), srv.URL+"/policy.txt", questions)

	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Contains(t, answers[0], "thirty days")
	assert.Equal(t, models.CannotFindAnswer, answers[1])
}

func TestProcessSameQuestionIsStable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(policyText))
	}))
	defer srv.Close()

	session := testSession(t, fastConfig())
	defer session.Close()

	question := "What is the grace period for premium payment?"
	answers, err := session.Process(context.Background(), srv.URL+"/policy.txt", []string{question, question})

	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, answers[0], answers[1])
}

func TestProcessFetchFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	session := testSession(t, fastConfig())
	defer session.Close()

	answers, err := session.Process(context.Background(), srv.URL+"/missing.pdf", []string{"anything"})

	require.Error(t, err)
	var fetchErr *fetcher.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Nil(t, answers)
}

func TestProcessManyQuestionsConcurrently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(policyText))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.Answer.MaxConcurrent = 4
	session := testSession(t, cfg)
	defer session.Close()

	questions := make([]string, 12)
	for i := range questions {
		questions[i] = "What is the grace period for premium payment?"
	}
	answers, err := session.Process(context.Background(), srv.URL+"/policy.txt", questions)

	require.NoError(t, err)
	require.Len(t, answers, len(questions))
	for _, a := range answers {
		assert.Contains(t, a, "thirty days")
	}
}

func TestFormatFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want models.Format
	}{
		{"https://example.com/doc.pdf", models.FormatPDF},
		{"https://example.com/doc.PDF?sig=abc", models.FormatPDF},
		{"https://example.com/report.docx", models.FormatDOCX},
		{"https://example.com/mail.eml", models.FormatEmail},
		{"https://example.com/sheet.xlsx", models.FormatXLSX},
		{"https://example.com/sheet.ods", models.FormatODS},
		{"https://example.com/notes.md", models.FormatText},
		{"https://example.com/no-extension", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFromURL(tt.url))
		})
	}
}

func TestProcessIndexMatchesChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(policyText))
	}))
	defer srv.Close()

	session := testSession(t, fastConfig())
	defer session.Close()

	_, err := session.Process(context.Background(), srv.URL+"/policy.txt", []string{"grace period?"})
	require.NoError(t, err)

	require.Equal(t, session.index.Len(), len(session.chunks))
	for i, chunk := range session.chunks {
		assert.Equal(t, session.chunks[0].DocID, chunk.DocID)
		assert.True(t, strings.HasSuffix(chunk.ID, "_"+strconv.Itoa(i)), chunk.ID)
	}
}
