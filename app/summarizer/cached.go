package summarizer

import (
	"context"
	"log/slog"
)

type SummaryCache interface {
	GetSummary(ctx context.Context, guid string) (string, error)
	SetSummary(ctx context.Context, guid, summary string) error
}

// Cached wraps a Summarizer with a cache keyed by article GUID so each
// article is summarized at most once. Cache failures are logged and
// bypassed, never surfaced.
type Cached struct {
	inner Summarizer
	cache SummaryCache
}

func NewCached(inner Summarizer, cache SummaryCache) *Cached {
	return &Cached{
		inner: inner,
		cache: cache,
	}
}

func (c *Cached) Summarize(ctx context.Context, input Input) (string, error) {
	if input.GUID != "" {
		cached, err := c.cache.GetSummary(ctx, input.GUID)
		if err != nil {
			slog.Warn("Summary cache read failed", "guid", input.GUID, "error", err)
		} else if cached != "" {
			slog.Debug("Using cached summary", "guid", input.GUID)
			return cached, nil
		}
	}

	summary, err := c.inner.Summarize(ctx, input)
	if err != nil {
		return "", err
	}

	if input.GUID != "" {
		if err := c.cache.SetSummary(ctx, input.GUID, summary); err != nil {
			slog.Warn("Summary cache write failed", "guid", input.GUID, "error", err)
		}
	}

	return summary, nil
}
