package api

import (
	"context"
	"time"

	"rssriver/app/feed"
	"rssriver/app/store"
)

type FeedStore interface {
	ListFeeds(ctx context.Context) ([]feed.Feed, error)
	AddFeed(ctx context.Context, f feed.Feed) (feed.Feed, error)
	UpdateFeed(ctx context.Context, f feed.Feed) error
	DeleteFeed(ctx context.Context, id string) error
}

type ReadStore interface {
	MarkRead(ctx context.Context, guid string) error
	MarkManyRead(ctx context.Context, guids []string) error
	MarkUnread(ctx context.Context, guid string) error
	ListRead(ctx context.Context) ([]string, error)
}

type RiverCache interface {
	GetRiver(ctx context.Context, horizon string) (string, bool, error)
	SetRiver(ctx context.Context, horizon, data string, ttl time.Duration) error
}

type HealthReporter interface {
	Health(ctx context.Context) map[string]interface{}
}

type FeedValidator interface {
	FetchMetadata(ctx context.Context, feedURL string) (*feed.Metadata, error)
}

type ContentResolver interface {
	Run(ctx context.Context, feedURL, guid string) (string, error)
}

var _ FeedStore = (*store.Store)(nil)
var _ ReadStore = (*store.Store)(nil)
var _ RiverCache = (*store.Store)(nil)
var _ HealthReporter = (*store.Store)(nil)

// RiverArticle is an Article annotated with the caller's read state.
type RiverArticle struct {
	feed.Article
	Read bool `json:"read"`
}

type addFeedRequest struct {
	URL      string `json:"url" binding:"required"`
	Category string `json:"category"`
	Color    string `json:"color"`
	View     string `json:"view"`
}

type updateFeedRequest struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color"`
	View     string `json:"view"`
}

type markReadRequest struct {
	GUID string `json:"guid" binding:"required"`
}

type markManyReadRequest struct {
	GUIDs []string `json:"guids" binding:"required"`
}

type summaryRequest struct {
	GUID    string `json:"guid" binding:"required"`
	Content string `json:"content" binding:"required"`
}
