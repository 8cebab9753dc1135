package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"
)

const maxPageBodySize = 5 << 20 // 5 MiB

// Extractor fetches an article's original page and runs readability-style
// main-content extraction over it. Outbound fetches share a small rate
// limiter so a burst of resolutions stays polite to origin servers.
type Extractor struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	timeout    time.Duration
}

func NewExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Extractor{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *Extractor) Run(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("page URL is empty")
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	data, err := e.fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}

	article, err := readability.FromReader(data, parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"title", article.Title,
		"content_length", len(article.Content))

	return article.Content, nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (io.Reader, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return bytes.NewReader(data), nil
}
