package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	titleFallbackLength  = 80
	excerptFallbackChars = 600
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Article, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
	}

	if parsed.Image != nil {
		metadata.ImageURL = parsed.Image.URL
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, p.normalizeItem(item))
	}

	return metadata, articles, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Article {
	article := Article{
		GUID:        cmp.Or(item.GUID, item.Link, item.Title, p.synthesizeGUID(item)),
		Title:       item.Title,
		Link:        item.Link,
		Content:     item.Description,
		FullContent: cmp.Or(item.Content, item.Description),
	}

	if article.Content == "" && item.Content != "" {
		article.Content = truncatePlainText(item.Content, excerptFallbackChars)
	}

	if article.Title == "" {
		article.Title = p.fallbackTitle(article)
	}

	switch {
	case item.PublishedParsed != nil:
		article.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		article.PublishedAt = *item.UpdatedParsed
	default:
		article.PublishedAt = time.Now().UTC()
	}

	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}
	if article.ImageURL == "" {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
				article.ImageURL = enclosure.URL
				break
			}
		}
	}

	return article
}

// fallbackTitle derives a display title for items shipped without one: a
// quoted snippet of the content text, or "Untitled" when nothing is usable.
func (p *Parser) fallbackTitle(article Article) string {
	text := truncatePlainText(cmp.Or(article.FullContent, article.Content), titleFallbackLength)
	if text == "" {
		return "Untitled"
	}
	return fmt.Sprintf("%q", text)
}

// synthesizeGUID is the last resort of the identifier precedence chain
// (guid, link, title). It hashes what the item does carry so the result stays
// stable across fetches as long as the item itself does.
func (p *Parser) synthesizeGUID(item *gofeed.Item) string {
	seed := fmt.Sprintf("%s|%s", item.Content, item.Description)
	if item.PublishedParsed != nil {
		seed += "|" + item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	hash := sha256.Sum256([]byte(seed))
	return "synthetic-" + hex.EncodeToString(hash[:8])
}

// truncatePlainText renders HTML to collapsed plain text capped at the given
// number of characters.
func truncatePlainText(html string, limit int) string {
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
