package feed

import (
	"fmt"
	"time"
)

// Feed is a subscription as configured by the user. URL is unique across the
// feed list.
type Feed struct {
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Color    string `json:"color" yaml:"color"`
	View     string `json:"view,omitempty" yaml:"view,omitempty"`
}

// Article is materialized fresh on every aggregation and never persisted;
// only its GUID may end up in the read-state set, so the GUID must be stable
// across repeated fetches of the same feed.
type Article struct {
	GUID          string    `json:"guid"`
	Title         string    `json:"title"`
	Link          string    `json:"link"`
	PublishedAt   time.Time `json:"pubDate"`
	Content       string    `json:"content"`
	FeedName      string    `json:"feedName"`
	FeedURL       string    `json:"feedUrl"`
	Category      string    `json:"category"`
	CategoryColor string    `json:"categoryColor"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	View          string    `json:"view,omitempty"`

	// FullContent carries the feed-provided body for content resolution.
	// It is not part of the river payload.
	FullContent string `json:"-"`
}

// Metadata describes the feed itself, used when validating a new
// subscription.
type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
}

// Horizon is the lookback window used to drop stale articles from the river.
type Horizon string

const (
	HorizonDay      Horizon = "24h"
	HorizonThreeDay Horizon = "3d"
	HorizonWeek     Horizon = "7d"
)

func ParseHorizon(s string) (Horizon, error) {
	switch Horizon(s) {
	case HorizonDay, HorizonThreeDay, HorizonWeek:
		return Horizon(s), nil
	}
	return "", fmt.Errorf("unknown horizon: %q", s)
}

func (h Horizon) Duration() time.Duration {
	switch h {
	case HorizonDay:
		return 24 * time.Hour
	case HorizonThreeDay:
		return 3 * 24 * time.Hour
	case HorizonWeek:
		return 7 * 24 * time.Hour
	}
	return 0
}
