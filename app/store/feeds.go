package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rssriver/app/feed"
)

var (
	ErrDuplicateFeed = errors.New("a feed with this URL already exists")
	ErrFeedNotFound  = errors.New("feed not found")
)

// The feed list is one JSON value under a single key. Personal-scale lists
// stay small enough that read-modify-write of the whole list is simpler and
// safer than per-feed keys.

func (s *Store) ListFeeds(ctx context.Context) ([]feed.Feed, error) {
	data, err := s.client.Get(ctx, s.feedsKey()).Result()
	if err == redis.Nil {
		return []feed.Feed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed list: %w", err)
	}

	var feeds []feed.Feed
	if err := json.Unmarshal([]byte(data), &feeds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed list: %w", err)
	}

	return feeds, nil
}

func (s *Store) saveFeeds(ctx context.Context, feeds []feed.Feed) error {
	data, err := json.Marshal(feeds)
	if err != nil {
		return fmt.Errorf("failed to marshal feed list: %w", err)
	}

	if err := s.client.Set(ctx, s.feedsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save feed list: %w", err)
	}

	return nil
}

// AddFeed appends a feed, assigning an ID when absent. Duplicate source
// URLs are rejected here, before any caller gets to the network.
func (s *Store) AddFeed(ctx context.Context, f feed.Feed) (feed.Feed, error) {
	feeds, err := s.ListFeeds(ctx)
	if err != nil {
		return feed.Feed{}, err
	}

	for _, existing := range feeds {
		if existing.URL == f.URL {
			return feed.Feed{}, ErrDuplicateFeed
		}
	}

	if f.ID == "" {
		f.ID = "feed-" + uuid.NewString()
	}

	feeds = append(feeds, f)
	if err := s.saveFeeds(ctx, feeds); err != nil {
		return feed.Feed{}, err
	}

	return f, nil
}

func (s *Store) UpdateFeed(ctx context.Context, f feed.Feed) error {
	feeds, err := s.ListFeeds(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, existing := range feeds {
		if existing.ID == f.ID {
			idx = i
			continue
		}
		if existing.URL == f.URL {
			return ErrDuplicateFeed
		}
	}
	if idx < 0 {
		return ErrFeedNotFound
	}

	feeds[idx] = f
	return s.saveFeeds(ctx, feeds)
}

func (s *Store) DeleteFeed(ctx context.Context, id string) error {
	feeds, err := s.ListFeeds(ctx)
	if err != nil {
		return err
	}

	remaining := make([]feed.Feed, 0, len(feeds))
	for _, existing := range feeds {
		if existing.ID != id {
			remaining = append(remaining, existing)
		}
	}

	if len(remaining) == len(feeds) {
		return ErrFeedNotFound
	}

	return s.saveFeeds(ctx, remaining)
}
