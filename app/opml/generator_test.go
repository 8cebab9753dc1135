package opml

import (
	"strings"
	"testing"

	"rssriver/app/feed"
)

func TestGenerator_Run_GroupsByCategory(t *testing.T) {
	generator := NewGenerator()

	feeds := []feed.Feed{
		{Name: "Go Blog", URL: "https://go.dev/blog/feed.atom", Category: "Tech"},
		{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/rss.xml", Category: "News"},
		{Name: "HN", URL: "https://news.ycombinator.com/rss", Category: "Tech"},
	}

	result := generator.Run(feeds)

	if !strings.Contains(result, `<outline text="Tech">`) {
		t.Errorf("Expected Tech category outline, got:\n%s", result)
	}
	if !strings.Contains(result, `<outline text="News">`) {
		t.Errorf("Expected News category outline, got:\n%s", result)
	}
	if !strings.Contains(result, `xmlUrl="https://go.dev/blog/feed.atom"`) {
		t.Errorf("Expected feed URL in outline, got:\n%s", result)
	}

	// Case-insensitive category ordering: News before Tech
	if strings.Index(result, `text="News"`) > strings.Index(result, `text="Tech"`) {
		t.Error("Expected News category before Tech")
	}
}

func TestGenerator_Run_CaseVariantCategoriesStaySeparate(t *testing.T) {
	generator := NewGenerator()

	feeds := []feed.Feed{
		{Name: "Upper", URL: "https://example.com/a.xml", Category: "Tech"},
		{Name: "Lower", URL: "https://example.com/b.xml", Category: "tech"},
	}

	result := generator.Run(feeds)

	if !strings.Contains(result, `<outline text="Tech">`) || !strings.Contains(result, `<outline text="tech">`) {
		t.Errorf("Expected separate outlines for 'Tech' and 'tech', got:\n%s", result)
	}
}

func TestGenerator_Run_UncategorizedFallback(t *testing.T) {
	generator := NewGenerator()

	feeds := []feed.Feed{
		{Name: "No Category", URL: "https://example.com/feed.xml"},
	}

	result := generator.Run(feeds)

	if !strings.Contains(result, `<outline text="Uncategorized">`) {
		t.Errorf("Expected Uncategorized fallback group, got:\n%s", result)
	}
}

func TestGenerator_Run_FeedsSortedByName(t *testing.T) {
	generator := NewGenerator()

	feeds := []feed.Feed{
		{Name: "zeta", URL: "https://example.com/z.xml", Category: "Tech"},
		{Name: "Alpha", URL: "https://example.com/a.xml", Category: "Tech"},
	}

	result := generator.Run(feeds)

	// Case-insensitive name ordering within a category
	if strings.Index(result, `text="Alpha"`) > strings.Index(result, `text="zeta"`) {
		t.Error("Expected Alpha before zeta within the category")
	}
}

func TestGenerator_Run_EscapesSpecialCharacters(t *testing.T) {
	generator := NewGenerator()

	feeds := []feed.Feed{
		{Name: `Tom & Jerry's "Feed" <news>`, URL: "https://example.com/feed?a=1&b=2", Category: "Fun & Games"},
	}

	result := generator.Run(feeds)

	if strings.Contains(result, `a=1&b=2"`) {
		t.Errorf("Expected ampersand escaped in URL attribute, got:\n%s", result)
	}
	if !strings.Contains(result, "&amp;") {
		t.Errorf("Expected escaped ampersands, got:\n%s", result)
	}
	if strings.Contains(result, "<news>") {
		t.Errorf("Expected angle brackets escaped, got:\n%s", result)
	}
}

func TestGenerator_Run_EmptySubscriptions(t *testing.T) {
	generator := NewGenerator()

	result := generator.Run(nil)

	if !strings.Contains(result, `<opml version="2.0">`) {
		t.Errorf("Expected valid OPML skeleton, got:\n%s", result)
	}
	if !strings.Contains(result, "<body>") || !strings.Contains(result, "</body>") {
		t.Errorf("Expected empty body element, got:\n%s", result)
	}
}
