package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"rssriver/app/feed"
)

type RiverStore interface {
	ListFeeds(ctx context.Context) ([]feed.Feed, error)
	SetRiver(ctx context.Context, horizon, data string, ttl time.Duration) error
}

// RefreshRiverTask pre-aggregates one horizon's river into the cache so
// interactive reads don't pay the fan-out latency.
type RefreshRiverTask struct {
	Task
	Horizon        feed.Horizon
	aggregator     *feed.Aggregator
	store          RiverStore
	maxConsecutive int
	cacheTTL       time.Duration
}

func NewRefreshRiverTask(horizon feed.Horizon, aggregator *feed.Aggregator,
	store RiverStore, maxConsecutive int, cacheTTL time.Duration) *RefreshRiverTask {
	return &RefreshRiverTask{
		Task:           NewTask(TaskTypeRefreshRiver, string(horizon)),
		Horizon:        horizon,
		aggregator:     aggregator,
		store:          store,
		maxConsecutive: maxConsecutive,
		cacheTTL:       cacheTTL,
	}
}

func (t *RefreshRiverTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subscriptions, err := t.store.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}

	if len(subscriptions) == 0 {
		slog.Debug("No feeds subscribed, skipping river refresh", "horizon", t.Horizon)
		return nil
	}

	articles := t.aggregator.Run(ctx, subscriptions)
	total := len(articles)

	articles = feed.FilterByWindow(articles, t.Horizon)
	articles = feed.Interleave(articles, t.maxConsecutive)

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal river: %w", err)
	}

	if err := t.store.SetRiver(ctx, string(t.Horizon), string(data), t.cacheTTL); err != nil {
		return fmt.Errorf("failed to cache river: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshRiver",
		"horizon", t.Horizon,
		"duration", t.GetDuration(),
		"feeds", len(subscriptions),
		"fetched", total,
		"in_window", len(articles))

	return nil
}
