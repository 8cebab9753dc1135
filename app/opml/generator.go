package opml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"rssriver/app/feed"
)

// Generator renders the subscription list as an OPML 2.0 document: one
// outline per category containing one rss outline per feed.
//
// Grouping is by exact category string; ordering of the groups is
// case-insensitive. "Tech" and "tech" therefore render as two adjacent
// outline blocks rather than being silently merged.
type Generator struct {
	collator *collate.Collator
}

func NewGenerator() *Generator {
	return &Generator{
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

func (g *Generator) Run(feeds []feed.Feed) string {
	byCategory := make(map[string][]feed.Feed)
	for _, f := range feeds {
		category := f.Category
		if category == "" {
			category = "Uncategorized"
		}
		byCategory[category] = append(byCategory[category], f)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return g.collator.CompareString(categories[i], categories[j]) < 0
	})

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n<opml version=\"2.0\">\n")
	buf.WriteString("  <head>\n")
	g.writeElement(&buf, "title", "rssriver subscriptions", 4)
	g.writeElement(&buf, "dateCreated", time.Now().UTC().Format(http.TimeFormat), 4)
	buf.WriteString("  </head>\n")
	buf.WriteString("  <body>\n")

	for _, category := range categories {
		categoryFeeds := byCategory[category]
		sort.SliceStable(categoryFeeds, func(i, j int) bool {
			return g.collator.CompareString(categoryFeeds[i].Name, categoryFeeds[j].Name) < 0
		})

		buf.WriteString(fmt.Sprintf("    <outline text=\"%s\">\n", escapeAttr(category)))
		for _, f := range categoryFeeds {
			buf.WriteString(fmt.Sprintf("      <outline type=\"rss\" text=\"%s\" title=\"%s\" xmlUrl=\"%s\" />\n",
				escapeAttr(f.Name),
				escapeAttr(f.Name),
				escapeAttr(f.URL)))
		}
		buf.WriteString("    </outline>\n")
	}

	buf.WriteString("  </body>\n</opml>")

	return buf.String()
}

func (g *Generator) writeElement(buf *bytes.Buffer, name, value string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString("<" + name + ">")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + name + ">\n")
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
