package feed

import (
	"testing"
)

func makeArticles(feedURLs ...string) []Article {
	articles := make([]Article, len(feedURLs))
	for i, url := range feedURLs {
		articles[i] = Article{
			GUID:    url + "-" + string(rune('a'+i)),
			FeedURL: url,
		}
	}
	return articles
}

func TestInterleave_BreaksUpRun(t *testing.T) {
	articles := makeArticles("a", "a", "a", "b", "b")

	result := Interleave(articles, 2)

	if len(result) != 5 {
		t.Fatalf("Expected 5 articles, got %d", len(result))
	}

	// The third slot must not extend the run of feed "a"
	if result[0].FeedURL != "a" || result[1].FeedURL != "a" {
		t.Errorf("Expected first two articles from feed 'a', got %s, %s",
			result[0].FeedURL, result[1].FeedURL)
	}
	if result[2].FeedURL != "b" {
		t.Errorf("Expected third article from feed 'b', got %s", result[2].FeedURL)
	}
}

func TestInterleave_MaxConsecutiveEnforced(t *testing.T) {
	articles := makeArticles("a", "a", "b", "a", "a", "b", "a", "c", "a", "a", "b", "a")

	result := Interleave(articles, 2)

	run := 0
	for i, article := range result {
		if i > 0 && article.FeedURL == result[i-1].FeedURL {
			run++
		} else {
			run = 1
		}
		if run > 2 {
			t.Errorf("Feed %s occupies more than 2 consecutive positions at index %d", article.FeedURL, i)
		}
	}
}

func TestInterleave_PreservesAllArticles(t *testing.T) {
	articles := makeArticles("a", "a", "a", "a", "b", "c", "b")

	result := Interleave(articles, 2)

	if len(result) != len(articles) {
		t.Fatalf("Expected %d articles, got %d", len(articles), len(result))
	}

	seen := make(map[string]bool)
	for _, article := range result {
		if seen[article.GUID] {
			t.Errorf("Article %s appears more than once", article.GUID)
		}
		seen[article.GUID] = true
	}
	for _, article := range articles {
		if !seen[article.GUID] {
			t.Errorf("Article %s missing from output", article.GUID)
		}
	}
}

func TestInterleave_PullsForwardOlderArticle(t *testing.T) {
	// Five articles from feed "a" followed by one from feed "b". The "b"
	// article should be pulled forward to break the run, then "a" continues
	// unrestricted once no alternative remains.
	articles := makeArticles("a", "a", "a", "a", "a", "b")

	result := Interleave(articles, 2)

	expected := []string{"a", "a", "b", "a", "a", "a"}
	for i, want := range expected {
		if result[i].FeedURL != want {
			t.Errorf("Position %d: expected feed %s, got %s", i, want, result[i].FeedURL)
		}
	}
}

func TestInterleave_SingleFeedUnchanged(t *testing.T) {
	articles := makeArticles("a", "a", "a", "a", "a")

	result := Interleave(articles, 2)

	for i, article := range result {
		if article.GUID != articles[i].GUID {
			t.Errorf("Position %d: expected %s, got %s", i, articles[i].GUID, article.GUID)
		}
	}
}

func TestInterleave_ShortInputUnchanged(t *testing.T) {
	articles := makeArticles("a", "a")

	result := Interleave(articles, 2)

	if len(result) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(result))
	}
	for i, article := range result {
		if article.GUID != articles[i].GUID {
			t.Errorf("Position %d: expected %s, got %s", i, articles[i].GUID, article.GUID)
		}
	}
}

func TestInterleave_DisabledWhenMaxConsecutiveZero(t *testing.T) {
	articles := makeArticles("a", "a", "a", "b")

	result := Interleave(articles, 0)

	for i, article := range result {
		if article.GUID != articles[i].GUID {
			t.Errorf("Position %d: expected %s, got %s", i, articles[i].GUID, article.GUID)
		}
	}
}

func TestInterleave_EmptyInput(t *testing.T) {
	result := Interleave([]Article{}, 2)

	if len(result) != 0 {
		t.Errorf("Expected empty result, got %d articles", len(result))
	}
}
