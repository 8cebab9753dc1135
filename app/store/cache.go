package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryTTL keeps AI summaries around long enough that an article is
// never summarized twice while it can still show up in a river.
const SummaryTTL = 90 * 24 * time.Hour

func (s *Store) GetSummary(ctx context.Context, guid string) (string, error) {
	val, err := s.client.Get(ctx, s.summaryKey(guid)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get summary: %w", err)
	}
	return val, nil
}

func (s *Store) SetSummary(ctx context.Context, guid, summary string) error {
	if err := s.client.Set(ctx, s.summaryKey(guid), summary, SummaryTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// GetRiver returns the pre-aggregated river JSON for a horizon, if the
// refresh scheduler (or a previous live aggregation) has warmed it.
func (s *Store) GetRiver(ctx context.Context, horizon string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.riverKey(horizon)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached river: %w", err)
	}
	return val, true, nil
}

func (s *Store) SetRiver(ctx context.Context, horizon, data string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.riverKey(horizon), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache river: %w", err)
	}
	return nil
}
