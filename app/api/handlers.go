package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rssriver/app/cfg"
	"rssriver/app/feed"
	"rssriver/app/opml"
	"rssriver/app/river"
	"rssriver/app/store"
	"rssriver/app/summarizer"
)

type Handler struct {
	feeds          FeedStore
	reads          ReadStore
	rivers         RiverCache
	health         HealthReporter
	aggregator     *feed.Aggregator
	validator      FeedValidator
	resolver       ContentResolver
	summarizer     summarizer.Summarizer
	opmlGenerator  *opml.Generator
	riverGenerator *river.Generator
	maxConsecutive int
	riverCacheTTL  time.Duration
}

func NewHandler(st *store.Store, aggregator *feed.Aggregator, validator FeedValidator,
	resolver ContentResolver, s summarizer.Summarizer) *Handler {
	c := cfg.Get()

	return &Handler{
		feeds:          st,
		reads:          st,
		rivers:         st,
		health:         st,
		aggregator:     aggregator,
		validator:      validator,
		resolver:       resolver,
		summarizer:     s,
		opmlGenerator:  opml.NewGenerator(),
		riverGenerator: river.NewGenerator(),
		maxConsecutive: c.MaxConsecutive,
		riverCacheTTL:  2 * time.Duration(c.RefreshInterval) * time.Second,
	}
}

func (h *Handler) GetRiver(c *gin.Context) {
	horizon, err := feed.ParseHorizon(c.DefaultQuery("range", string(feed.HorizonDay)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of 24h, 3d, 7d"})
		return
	}

	articles, err := h.riverArticles(c, horizon)
	if err != nil {
		slog.Error("River aggregation failed", "horizon", horizon, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate river"})
		return
	}

	readSet := make(map[string]bool)
	if guids, err := h.reads.ListRead(c); err != nil {
		slog.Warn("Failed to load read state, rendering all unread", "error", err)
	} else {
		for _, guid := range guids {
			readSet[guid] = true
		}
	}

	response := make([]RiverArticle, 0, len(articles))
	for _, article := range articles {
		response = append(response, RiverArticle{
			Article: article,
			Read:    readSet[article.GUID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"range":    horizon,
		"total":    len(response),
		"articles": response,
	})
}

func (h *Handler) GetRiverRSS(c *gin.Context) {
	horizon, err := feed.ParseHorizon(c.DefaultQuery("range", string(feed.HorizonDay)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of 24h, 3d, 7d"})
		return
	}

	articles, err := h.riverArticles(c, horizon)
	if err != nil {
		slog.Error("River aggregation failed", "horizon", horizon, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.riverGenerator.Run(articles, horizon, cfg.Get().BaseUrl)
	if err != nil {
		slog.Error("River RSS generation failed", "horizon", horizon, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-River-Items", strconv.Itoa(len(articles)))
	c.String(http.StatusOK, rss)
}

// riverArticles serves the cached river when the refresh scheduler has a
// fresh one, and falls back to a live aggregation otherwise.
func (h *Handler) riverArticles(c *gin.Context, horizon feed.Horizon) ([]feed.Article, error) {
	if data, ok, err := h.rivers.GetRiver(c, string(horizon)); err != nil {
		slog.Warn("River cache read failed, aggregating live", "horizon", horizon, "error", err)
	} else if ok {
		var articles []feed.Article
		if err := json.Unmarshal([]byte(data), &articles); err == nil {
			return articles, nil
		}
		slog.Warn("Cached river is malformed, aggregating live", "horizon", horizon)
	}

	subscriptions, err := h.feeds.ListFeeds(c)
	if err != nil {
		return nil, err
	}

	articles := h.aggregator.Run(c, subscriptions)
	articles = feed.FilterByWindow(articles, horizon)
	articles = feed.Interleave(articles, h.maxConsecutive)

	if data, err := json.Marshal(articles); err == nil {
		if err := h.rivers.SetRiver(c, string(horizon), string(data), h.riverCacheTTL); err != nil {
			slog.Warn("River cache write failed", "horizon", horizon, "error", err)
		}
	}

	return articles, nil
}

func (h *Handler) GetArticleContent(c *gin.Context) {
	feedURL := c.Query("feed")
	guid := c.Query("guid")
	if feedURL == "" || guid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feed and guid query parameters are required"})
		return
	}

	content, err := h.resolver.Run(c, feedURL, guid)
	if err != nil {
		// Total failure degrades to empty content, it is never fatal to
		// the read.
		slog.Warn("Content resolution failed", "feed", feedURL, "guid", guid, "error", err)
		c.JSON(http.StatusOK, gin.H{"content": ""})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h *Handler) CreateSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guid and content are required"})
		return
	}

	if h.summarizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": summarizer.ErrNotConfigured.Error()})
		return
	}

	summary, err := h.summarizer.Summarize(c, summarizer.Input{GUID: req.GUID, Content: req.Content})
	if err != nil {
		slog.Error("Summarization failed", "guid", req.GUID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) GetReadArticles(c *gin.Context) {
	guids, err := h.reads.ListRead(c)
	if err != nil {
		slog.Error("Failed to list read articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list read articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guids": guids,
		"total": len(guids),
	})
}

// Read-state writes are fire-and-forget from the caller's point of view:
// failures are logged and reported in the body, never as an error status
// the UI would have to handle.
func (h *Handler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guid is required"})
		return
	}

	err := h.reads.MarkRead(c, req.GUID)
	if err != nil {
		slog.Error("Failed to mark article as read", "guid", req.GUID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": err == nil})
}

func (h *Handler) MarkManyRead(c *gin.Context) {
	var req markManyReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guids is required"})
		return
	}

	err := h.reads.MarkManyRead(c, req.GUIDs)
	if err != nil {
		slog.Error("Failed to mark articles as read", "count", len(req.GUIDs), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": err == nil, "count": len(req.GUIDs)})
}

func (h *Handler) MarkUnread(c *gin.Context) {
	guid := c.Param("guid")
	if guid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guid is required"})
		return
	}

	err := h.reads.MarkUnread(c, guid)
	if err != nil {
		slog.Error("Failed to mark article as unread", "guid", guid, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": err == nil})
}

func (h *Handler) ExportOPML(c *gin.Context) {
	subscriptions, err := h.feeds.ListFeeds(c)
	if err != nil {
		slog.Error("Failed to list feeds for OPML export", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	document := h.opmlGenerator.Run(subscriptions)

	c.Header("Content-Type", "text/xml; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="rssriver-subscriptions.opml"`)
	c.String(http.StatusOK, document)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	subscriptions, err := h.feeds.ListFeeds(c)
	if err != nil {
		slog.Error("Failed to list feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feeds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": subscriptions,
		"total": len(subscriptions),
	})
}

func (h *Handler) APIAddFeed(c *gin.Context) {
	var req addFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be a valid http(s) URL"})
		return
	}

	metadata, err := h.validator.FetchMetadata(c, req.URL)
	if err != nil {
		slog.Warn("Feed validation failed", "url", req.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to fetch feed: " + err.Error()})
		return
	}

	name := metadata.Title
	if name == "" {
		name = req.URL
	}

	added, err := h.feeds.AddFeed(c, feed.Feed{
		URL:      req.URL,
		Name:     name,
		Category: req.Category,
		Color:    req.Color,
		View:     req.View,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFeed) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to add feed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add feed"})
		return
	}

	c.JSON(http.StatusCreated, added)
}

func (h *Handler) APIUpdateFeed(c *gin.Context) {
	id := c.Param("id")

	var req updateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	subscriptions, err := h.feeds.ListFeeds(c)
	if err != nil {
		slog.Error("Failed to list feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feeds"})
		return
	}

	var current *feed.Feed
	for i := range subscriptions {
		if subscriptions[i].ID == id {
			current = &subscriptions[i]
			break
		}
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": store.ErrFeedNotFound.Error()})
		return
	}

	updated := *current
	if req.URL != "" {
		updated.URL = req.URL
	}
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Category != "" {
		updated.Category = req.Category
	}
	if req.Color != "" {
		updated.Color = req.Color
	}
	if req.View != "" {
		updated.View = req.View
	}

	if err := h.feeds.UpdateFeed(c, updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateFeed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrFeedNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			slog.Error("Failed to update feed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update feed"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) APIDeleteFeed(c *gin.Context) {
	id := c.Param("id")

	if err := h.feeds.DeleteFeed(c, id); err != nil {
		if errors.Is(err, store.ErrFeedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to delete feed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
		"storage":   h.health.Health(c),
	}

	if subscriptions, err := h.feeds.ListFeeds(c); err == nil {
		health["feeds"] = len(subscriptions)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version": cfg.Get().Version,
	}

	if subscriptions, err := h.feeds.ListFeeds(c); err == nil {
		stats["feeds"] = len(subscriptions)

		categories := make(map[string]int)
		for _, f := range subscriptions {
			categories[f.Category]++
		}
		stats["categories"] = categories
	}

	if guids, err := h.reads.ListRead(c); err == nil {
		stats["read_articles"] = len(guids)
	}

	c.JSON(http.StatusOK, stats)
}
