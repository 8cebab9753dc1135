package river

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"rssriver/app/feed"
)

// Generator renders an aggregated river as a single RSS 2.0 feed, so the
// merged stream can be consumed by any other reader.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(articles []feed.Article, horizon feed.Horizon, baseURL string) (string, error) {
	out := &feeds.Feed{
		Title:       "River of news",
		Link:        &feeds.Link{Href: baseURL},
		Description: fmt.Sprintf("Merged articles from all subscribed feeds, last %s", horizon),
		Created:     time.Now(),
	}

	for _, article := range articles {
		out.Items = append(out.Items, &feeds.Item{
			Id:          article.GUID,
			Title:       article.Title,
			Link:        &feeds.Link{Href: article.Link},
			Description: article.Content,
			Author:      &feeds.Author{Name: article.FeedName},
			Created:     article.PublishedAt,
		})
	}

	rss, err := out.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to render river RSS: %w", err)
	}

	return rss, nil
}
