package feed

import "slices"

// Interleave reorders a newest-first article list so no feed occupies more
// than maxConsecutive consecutive positions, disturbing chronological order
// as little as possible. High-frequency feeds otherwise bury same-day items
// from quieter ones under a run of their own articles.
//
// The pass is greedy: when placing the next article would complete an
// over-long run, the first later article from a different feed is pulled
// forward instead and the displaced one retried. Only later (older) items
// are ever promoted, so early positions still skew toward the newest
// content. If the tail holds nothing but the running feed, the run is
// allowed to continue: a starved input has no valid alternative.
func Interleave(articles []Article, maxConsecutive int) []Article {
	if maxConsecutive < 1 || len(articles) <= maxConsecutive {
		return articles
	}

	out := make([]Article, 0, len(articles))
	remaining := slices.Clone(articles)

	for len(remaining) > 0 {
		candidate := remaining[0]

		if extendsRun(out, candidate, maxConsecutive) {
			swap := -1
			for i := 1; i < len(remaining); i++ {
				if remaining[i].FeedURL != candidate.FeedURL {
					swap = i
					break
				}
			}

			if swap >= 0 {
				out = append(out, remaining[swap])
				remaining = slices.Delete(remaining, swap, swap+1)
				continue
			}
		}

		out = append(out, candidate)
		remaining = remaining[1:]
	}

	return out
}

// extendsRun reports whether appending candidate would put maxConsecutive+1
// articles from one feed in a row.
func extendsRun(out []Article, candidate Article, maxConsecutive int) bool {
	if len(out) < maxConsecutive {
		return false
	}

	for _, article := range out[len(out)-maxConsecutive:] {
		if article.FeedURL != candidate.FeedURL {
			return false
		}
	}

	return true
}
