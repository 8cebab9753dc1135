package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Aggregator fans out one fetch per feed and merges the results into a
// single list sorted newest-first. A feed that fails contributes zero items
// and never aborts the aggregation.
type Aggregator struct {
	fetcher *Fetcher
}

func NewAggregator(fetcher *Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Run fetches all feeds concurrently. Latency is bounded by the slowest
// single feed (each carrying its own timeout), not the sum. No concurrency
// cap: feed lists are personal-scale, tens of sources at most.
func (a *Aggregator) Run(ctx context.Context, feeds []Feed) []Article {
	var wg sync.WaitGroup
	resultCh := make(chan []Article, len(feeds))

	for _, fd := range feeds {
		wg.Add(1)
		go func(fd Feed) {
			defer wg.Done()

			_, articles, err := a.fetcher.Run(ctx, fd.URL)
			if err != nil {
				slog.Warn("Feed fetch failed, contributing no items", "feed", fd.Name, "url", fd.URL, "error", err)
				return
			}

			for i := range articles {
				articles[i].FeedName = fd.Name
				articles[i].FeedURL = fd.URL
				articles[i].Category = fd.Category
				articles[i].CategoryColor = fd.Color
				articles[i].View = fd.View
			}

			resultCh <- articles
		}(fd)
	}

	wg.Wait()
	close(resultCh)

	var all []Article
	for batch := range resultCh {
		all = append(all, batch...)
	}

	// Stable sort: same-timestamp articles keep their arrival order.
	slices.SortStableFunc(all, func(x, y Article) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})

	return all
}
