package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/c360studio/semstreams/pkg/retry"
)

// DefaultMaxContentSize caps remote schema documents at 32 MiB.
const DefaultMaxContentSize = 32 << 20

// FetchResult contains a fetched schema document.
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// Fetcher retrieves remote schema documents with retry.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
	retry          retry.Config
}

// NewFetcher creates a fetcher. maxAttempts <= 0 uses the retry defaults.
func NewFetcher(timeout time.Duration, maxAttempts int) *Fetcher {
	cfg := retry.DefaultConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (max 5)")
				}
				return nil
			},
		},
		userAgent:      "semschema/1.0",
		maxContentSize: DefaultMaxContentSize,
		retry:          cfg,
	}
}

// Fetch retrieves the document at urlStr. Server errors and transport
// failures are retried; client errors are not.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResult, error) {
	var result *FetchResult
	err := retry.Do(ctx, f.retry, func() error {
		res, err := f.fetchOnce(ctx, urlStr)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, retry.NonRetryable(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/turtle, application/rdf+xml;q=0.9, application/n-triples;q=0.9, text/n3;q=0.8, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, retry.NonRetryable(statusErr)
		}
		return nil, statusErr
	}

	limitReader := io.LimitReader(resp.Body, f.maxContentSize+1)
	body, err := io.ReadAll(limitReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxContentSize {
		return nil, retry.NonRetryable(fmt.Errorf("content too large (exceeds %d bytes)", f.maxContentSize))
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
