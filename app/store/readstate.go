package store

import (
	"context"
	"fmt"
)

// Read state is a Redis set of article GUIDs. It grows unboundedly unless
// externally pruned, which is acceptable for a single-user tool.

func (s *Store) MarkRead(ctx context.Context, guid string) error {
	if err := s.client.SAdd(ctx, s.readKey(), guid).Err(); err != nil {
		return fmt.Errorf("failed to mark article as read: %w", err)
	}
	return nil
}

func (s *Store) MarkManyRead(ctx context.Context, guids []string) error {
	if len(guids) == 0 {
		return nil
	}

	members := make([]interface{}, len(guids))
	for i, guid := range guids {
		members[i] = guid
	}

	if err := s.client.SAdd(ctx, s.readKey(), members...).Err(); err != nil {
		return fmt.Errorf("failed to mark articles as read: %w", err)
	}
	return nil
}

func (s *Store) MarkUnread(ctx context.Context, guid string) error {
	if err := s.client.SRem(ctx, s.readKey(), guid).Err(); err != nil {
		return fmt.Errorf("failed to mark article as unread: %w", err)
	}
	return nil
}

func (s *Store) ListRead(ctx context.Context) ([]string, error) {
	guids, err := s.client.SMembers(ctx, s.readKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list read articles: %w", err)
	}
	return guids, nil
}
