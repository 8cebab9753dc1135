package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"rssriver/app/feed"
	"rssriver/app/opml"
	"rssriver/app/river"
	"rssriver/app/store"
	"rssriver/app/summarizer"
)

type mockFeedStore struct {
	feeds  []feed.Feed
	addErr error
}

func (m *mockFeedStore) ListFeeds(ctx context.Context) ([]feed.Feed, error) {
	return m.feeds, nil
}

func (m *mockFeedStore) AddFeed(ctx context.Context, f feed.Feed) (feed.Feed, error) {
	if m.addErr != nil {
		return feed.Feed{}, m.addErr
	}
	f.ID = "feed-test"
	m.feeds = append(m.feeds, f)
	return f, nil
}

func (m *mockFeedStore) UpdateFeed(ctx context.Context, f feed.Feed) error {
	for i := range m.feeds {
		if m.feeds[i].ID == f.ID {
			m.feeds[i] = f
			return nil
		}
	}
	return store.ErrFeedNotFound
}

func (m *mockFeedStore) DeleteFeed(ctx context.Context, id string) error {
	for i := range m.feeds {
		if m.feeds[i].ID == id {
			m.feeds = append(m.feeds[:i], m.feeds[i+1:]...)
			return nil
		}
	}
	return store.ErrFeedNotFound
}

type mockReadStore struct {
	read map[string]bool
}

func (m *mockReadStore) MarkRead(ctx context.Context, guid string) error {
	if m.read == nil {
		m.read = make(map[string]bool)
	}
	m.read[guid] = true
	return nil
}

func (m *mockReadStore) MarkManyRead(ctx context.Context, guids []string) error {
	for _, guid := range guids {
		if err := m.MarkRead(ctx, guid); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockReadStore) MarkUnread(ctx context.Context, guid string) error {
	delete(m.read, guid)
	return nil
}

func (m *mockReadStore) ListRead(ctx context.Context) ([]string, error) {
	guids := make([]string, 0, len(m.read))
	for guid := range m.read {
		guids = append(guids, guid)
	}
	return guids, nil
}

type mockRiverCache struct {
	rivers map[string]string
}

func (m *mockRiverCache) GetRiver(ctx context.Context, horizon string) (string, bool, error) {
	data, ok := m.rivers[horizon]
	return data, ok, nil
}

func (m *mockRiverCache) SetRiver(ctx context.Context, horizon, data string, ttl time.Duration) error {
	if m.rivers == nil {
		m.rivers = make(map[string]string)
	}
	m.rivers[horizon] = data
	return nil
}

type mockValidator struct {
	metadata *feed.Metadata
	err      error
}

func (m *mockValidator) FetchMetadata(ctx context.Context, feedURL string) (*feed.Metadata, error) {
	return m.metadata, m.err
}

type mockResolver struct {
	content string
	err     error
}

func (m *mockResolver) Run(ctx context.Context, feedURL, guid string) (string, error) {
	return m.content, m.err
}

type mockSummarizer struct {
	summary string
	err     error
}

func (m *mockSummarizer) Summarize(ctx context.Context, input summarizer.Input) (string, error) {
	return m.summary, m.err
}

func newTestHandler() (*Handler, *mockFeedStore, *mockReadStore, *mockRiverCache) {
	feeds := &mockFeedStore{}
	reads := &mockReadStore{}
	rivers := &mockRiverCache{}

	handler := &Handler{
		feeds:          feeds,
		reads:          reads,
		rivers:         rivers,
		validator:      &mockValidator{metadata: &feed.Metadata{Title: "Fetched Title"}},
		resolver:       &mockResolver{content: "<p>resolved</p>"},
		opmlGenerator:  opml.NewGenerator(),
		riverGenerator: river.NewGenerator(),
		maxConsecutive: 2,
		riverCacheTTL:  10 * time.Minute,
	}

	return handler, feeds, reads, rivers
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newTestRouter(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r, handler, apiAccessKey)
	return r
}

func cacheRiver(rivers *mockRiverCache, horizon string, articles []feed.Article) {
	data, _ := json.Marshal(articles)
	rivers.SetRiver(context.Background(), horizon, string(data), time.Minute)
}

func TestGetRiver_FromCache(t *testing.T) {
	handler, _, reads, rivers := newTestHandler()

	cacheRiver(rivers, "24h", []feed.Article{
		{GUID: "g1", Title: "One", FeedURL: "http://a"},
		{GUID: "g2", Title: "Two", FeedURL: "http://b"},
	})
	reads.MarkRead(context.Background(), "g2")

	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/river?range=24h", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Range    string         `json:"range"`
		Total    int            `json:"total"`
		Articles []RiverArticle `json:"articles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}

	if resp.Range != "24h" {
		t.Errorf("Expected range '24h', got '%s'", resp.Range)
	}
	if resp.Total != 2 {
		t.Fatalf("Expected 2 articles, got %d", resp.Total)
	}
	if resp.Articles[0].Read {
		t.Error("Expected g1 unread")
	}
	if !resp.Articles[1].Read {
		t.Error("Expected g2 read")
	}
}

func TestGetRiver_DefaultRange(t *testing.T) {
	handler, _, _, rivers := newTestHandler()
	cacheRiver(rivers, "24h", []feed.Article{})

	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/river", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"range":"24h"`) {
		t.Errorf("Expected default range 24h, got: %s", w.Body.String())
	}
}

func TestGetRiver_InvalidRange(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/river?range=30d", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid range, got %d", w.Code)
	}
}

func TestGetArticleContent(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/articles/content?feed=http://a&guid=g1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "resolved") {
		t.Errorf("Expected resolved content, got: %s", w.Body.String())
	}
}

func TestGetArticleContent_MissingParams(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/articles/content?feed=http://a", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing guid, got %d", w.Code)
	}
}

func TestGetArticleContent_ResolverErrorDegradesToEmpty(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	handler.resolver = &mockResolver{err: errors.New("feed gone")}
	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/articles/content?feed=http://a&guid=g1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 even on resolver failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"content":""`) {
		t.Errorf("Expected empty content, got: %s", w.Body.String())
	}
}

func TestCreateSummary(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	handler.summarizer = &mockSummarizer{summary: "A concise summary."}
	router := newTestRouter(handler, "")

	w := performRequest(router, "POST", "/articles/summary",
		`{"guid":"g1","content":"<p>long article body</p>"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "A concise summary.") {
		t.Errorf("Expected summary in response, got: %s", w.Body.String())
	}
}

func TestCreateSummary_NotConfigured(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "POST", "/articles/summary",
		`{"guid":"g1","content":"body"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when summarization is not configured, got %d", w.Code)
	}
}

func TestCreateSummary_MissingFields(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	handler.summarizer = &mockSummarizer{summary: "x"}
	router := newTestRouter(handler, "")

	w := performRequest(router, "POST", "/articles/summary", `{"guid":"g1"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing content, got %d", w.Code)
	}
}

func TestMarkRead(t *testing.T) {
	handler, _, reads, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "POST", "/articles/read", `{"guid":"g1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !reads.read["g1"] {
		t.Error("Expected g1 marked as read")
	}
}

func TestMarkManyRead(t *testing.T) {
	handler, _, reads, _ := newTestHandler()
	router := newTestRouter(handler, "")

	w := performRequest(router, "POST", "/articles/read/batch", `{"guids":["g1","g2","g3"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(reads.read) != 3 {
		t.Errorf("Expected 3 articles marked read, got %d", len(reads.read))
	}
}

func TestMarkUnread(t *testing.T) {
	handler, _, reads, _ := newTestHandler()
	reads.MarkRead(context.Background(), "g1")
	router := newTestRouter(handler, "")

	w := performRequest(router, "DELETE", "/articles/read/g1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if reads.read["g1"] {
		t.Error("Expected g1 no longer read")
	}
}

func TestExportOPML(t *testing.T) {
	handler, feeds, _, _ := newTestHandler()
	feeds.feeds = []feed.Feed{
		{ID: "f1", URL: "https://example.com/feed.xml", Name: "Example", Category: "Tech"},
	}
	router := newTestRouter(handler, "")

	w := performRequest(router, "GET", "/export/opml", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/xml") {
		t.Errorf("Expected text/xml content type, got '%s'", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got '%s'", cd)
	}
	if !strings.Contains(w.Body.String(), "https://example.com/feed.xml") {
		t.Errorf("Expected feed in OPML, got: %s", w.Body.String())
	}
}

func TestAPIAddFeed(t *testing.T) {
	handler, feeds, _, _ := newTestHandler()
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("POST", "/api/feeds",
		strings.NewReader(`{"url":"https://example.com/feed.xml","category":"Tech"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(feeds.feeds) != 1 {
		t.Fatalf("Expected 1 feed stored, got %d", len(feeds.feeds))
	}
	// Display name comes from the fetched feed metadata
	if feeds.feeds[0].Name != "Fetched Title" {
		t.Errorf("Expected metadata-derived name, got '%s'", feeds.feeds[0].Name)
	}
}

func TestAPIAddFeed_Duplicate(t *testing.T) {
	handler, feeds, _, _ := newTestHandler()
	feeds.addErr = store.ErrDuplicateFeed
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("POST", "/api/feeds",
		strings.NewReader(`{"url":"https://example.com/feed.xml"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate feed, got %d", w.Code)
	}
}

func TestAPIAddFeed_UnfetchableFeed(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	handler.validator = &mockValidator{err: errors.New("not a feed")}
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("POST", "/api/feeds",
		strings.NewReader(`{"url":"https://example.com/not-a-feed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for unfetchable feed, got %d", w.Code)
	}
}

func TestAPIUpdateFeed_PartialUpdate(t *testing.T) {
	handler, feeds, _, _ := newTestHandler()
	feeds.feeds = []feed.Feed{
		{ID: "f1", URL: "https://example.com/feed.xml", Name: "Old Name", Category: "Tech"},
	}
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("PATCH", "/api/feeds/f1",
		strings.NewReader(`{"name":"New Name"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated := feeds.feeds[0]
	if updated.Name != "New Name" {
		t.Errorf("Expected name updated, got '%s'", updated.Name)
	}
	// Fields absent from the request stay untouched
	if updated.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected URL unchanged, got '%s'", updated.URL)
	}
	if updated.Category != "Tech" {
		t.Errorf("Expected category unchanged, got '%s'", updated.Category)
	}
}

func TestAPIUpdateFeed_NotFound(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("PATCH", "/api/feeds/missing",
		strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown feed, got %d", w.Code)
	}
}

func TestAPIDeleteFeed_NotFound(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "secret")

	req := httptest.NewRequest("DELETE", "/api/feeds/missing", nil)
	req.Header.Set("X-API-Key", "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown feed, got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler, _, _, _ := newTestHandler()
	router := newTestRouter(handler, "secret")

	// No key
	w := performRequest(router, "GET", "/api/feeds", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without API key, got %d", w.Code)
	}

	// Wrong key
	req := httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong API key, got %d", w.Code)
	}

	// Correct key via X-API-Key
	req = httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with correct API key, got %d", w.Code)
	}

	// Correct key via Authorization: Bearer
	req = httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", w.Code)
	}
}
