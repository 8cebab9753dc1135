package content

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"rssriver/app/feed"
)

const (
	// ExcerptThreshold is the plain-text length above which feed content is
	// treated as the full article rather than an excerpt.
	ExcerptThreshold = 1000
	// ExtractionMinLength is the minimum plain-text length a page
	// extraction must yield to be considered viable.
	ExtractionMinLength = 200
	// DirectUseMinLength is the plain-text length above which feed content
	// is used as-is when extraction came up short.
	DirectUseMinLength = 500
)

type FeedFetcher interface {
	Run(ctx context.Context, feedURL string) (*feed.Metadata, []feed.Article, error)
}

// Resolver returns the best-available full content for one article,
// sanitized. The feed is re-fetched on every call; articles are ephemeral
// and there is no per-article store to look them up in.
type Resolver struct {
	feeds     FeedFetcher
	extractor *Extractor
	sanitizer *Sanitizer
}

func NewResolver(feeds FeedFetcher, extractor *Extractor, sanitizer *Sanitizer) *Resolver {
	return &Resolver{
		feeds:     feeds,
		extractor: extractor,
		sanitizer: sanitizer,
	}
}

// Run walks the fallback chain: substantial feed content, then page
// extraction, then direct use of shorter feed content, then the bare
// excerpt. A fetch failure at any stage degrades to the next step; only
// total exhaustion yields an empty string.
func (r *Resolver) Run(ctx context.Context, feedURL, guid string) (string, error) {
	_, articles, err := r.feeds.Run(ctx, feedURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed: %w", err)
	}

	idx := slices.IndexFunc(articles, func(a feed.Article) bool {
		return a.GUID == guid
	})
	if idx < 0 {
		return "", fmt.Errorf("article %q not found in feed", guid)
	}
	article := articles[idx]

	// Thresholds are in characters, not bytes.
	feedContent := cmp.Or(article.FullContent, article.Content)
	feedTextLen := utf8.RuneCountInString(textContent(feedContent))
	if feedTextLen > ExcerptThreshold {
		return r.sanitizer.Run(feedContent), nil
	}

	extracted, err := r.extractor.Run(ctx, article.Link)
	if err != nil {
		slog.Debug("Page extraction failed, falling back to feed content",
			"link", article.Link, "error", err)
	} else if utf8.RuneCountInString(textContent(extracted)) >= ExtractionMinLength {
		return r.sanitizer.Run(extracted), nil
	}

	if feedTextLen > DirectUseMinLength {
		return r.sanitizer.Run(feedContent), nil
	}

	if feedContent != "" {
		return r.sanitizer.Run(feedContent), nil
	}

	return "", nil
}
