package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
)

// FetchError reports a download that failed on every attempt.
type FetchError struct {
	URL      string
	Attempts int
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s failed after %d attempts: HTTP %d", e.URL, e.Attempts, e.Status)
	}
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PayloadTooLargeError reports a document exceeding the configured cap.
// It is terminal: oversized payloads are not retried.
type PayloadTooLargeError struct {
	URL  string
	Size int64
	Max  int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("document at %s too large: %d bytes (max %d)", e.URL, e.Size, e.Max)
}

// Fetcher downloads documents with retry, exponential backoff and a payload cap.
type Fetcher struct {
	client *http.Client
	cfg    config.FetchConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a fetcher from the given config.
func New(cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fetch downloads the document at url. It retries transport errors and
// non-200 responses up to MaxRetries times with backoff base*2^attempt,
// returning the final attempt's failure as a *FetchError. An oversized
// payload fails immediately with *PayloadTooLargeError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt < f.cfg.MaxRetries; attempt++ {
		data, status, err := f.attempt(ctx, url)
		if err == nil {
			log.Debug().Str("url", url).Int("bytes", len(data)).Int("attempt", attempt+1).Msg("document downloaded")
			return data, nil
		}
		if tooLarge, ok := err.(*PayloadTooLargeError); ok {
			return nil, tooLarge
		}
		lastErr = err
		lastStatus = status
		log.Warn().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("download attempt failed")

		backoff := f.cfg.BackoffBase * (1 << attempt)
		if err := f.sleep(ctx, backoff); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt + 1, Err: err}
		}
	}

	return nil, &FetchError{URL: url, Attempts: f.cfg.MaxRetries, Status: lastStatus, Err: lastErr}
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if resp.ContentLength > f.cfg.MaxPayloadSize {
		return nil, 0, &PayloadTooLargeError{URL: url, Size: resp.ContentLength, Max: f.cfg.MaxPayloadSize}
	}

	// The cap is also enforced while reading for servers that omit
	// Content-Length.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxPayloadSize+1))
	if err != nil {
		return nil, 0, err
	}
	if int64(len(data)) > f.cfg.MaxPayloadSize {
		return nil, 0, &PayloadTooLargeError{URL: url, Size: int64(len(data)), Max: f.cfg.MaxPayloadSize}
	}
	return data, 0, nil
}
