package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"rssriver/app/feed"
)

type seedFile struct {
	Feeds []feed.Feed `yaml:"feeds"`
}

// LoadSeed reads a YAML feed list used to populate a fresh store.
func LoadSeed(path string) ([]feed.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	for i, f := range seed.Feeds {
		if f.URL == "" {
			return nil, fmt.Errorf("seed feed at index %d has no URL", i)
		}
		if f.Name == "" {
			seed.Feeds[i].Name = f.URL
		}
	}

	return seed.Feeds, nil
}

// ImportSeed adds seed feeds that are not already subscribed, keyed by URL.
// Returns the number of feeds imported.
func (s *Store) ImportSeed(ctx context.Context, seeds []feed.Feed) (int, error) {
	imported := 0

	for _, f := range seeds {
		if _, err := s.AddFeed(ctx, f); err != nil {
			if err == ErrDuplicateFeed {
				slog.Debug("Seed feed already subscribed, skipping", "url", f.URL)
				continue
			}
			return imported, err
		}
		imported++
	}

	return imported, nil
}
