package feed

import "time"

// FilterByWindow drops articles published before now minus the horizon.
// The boundary is inclusive: an article published exactly at the cutoff is
// retained.
func FilterByWindow(articles []Article, horizon Horizon) []Article {
	return filterAt(articles, horizon, time.Now().UTC())
}

func filterAt(articles []Article, horizon Horizon, now time.Time) []Article {
	duration := horizon.Duration()
	if duration <= 0 {
		return articles
	}

	cutoff := now.Add(-duration)

	filtered := make([]Article, 0, len(articles))
	for _, article := range articles {
		if !article.PublishedAt.Before(cutoff) {
			filtered = append(filtered, article)
		}
	}

	return filtered
}
