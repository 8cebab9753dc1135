package summarizer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no API key was provided at startup.
var ErrNotConfigured = errors.New("summarization is not configured")

// Input describes one summary request.
type Input struct {
	// GUID identifies the article, used as the cache key.
	GUID string
	// Content is the article HTML or text to summarize.
	Content string
}

// Summarizer produces a short summary for an article.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
