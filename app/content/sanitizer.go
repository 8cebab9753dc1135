package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer enforces the allowlist every piece of feed or page HTML must
// pass before it is considered safe to render. It covers everything
// readability extraction and typical feeds produce while stripping all
// script vectors: event-handler attributes, javascript: and data: URLs,
// iframes. External links are forced to open in a new context without
// opener/referrer leakage.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	// Block
	p.AllowElements(
		"p", "div", "section", "article", "main", "header", "footer",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dl", "dt", "dd",
		"blockquote", "pre", "code", "hr", "br",
		"figure", "figcaption",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption",
	)
	// Inline
	p.AllowElements(
		"a", "strong", "b", "em", "i", "u", "s", "strike", "del", "ins",
		"abbr", "acronym", "cite", "q", "time", "mark", "small", "sub", "sup",
		"span", "img",
	)

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height", "loading").OnElements("img")
	p.AllowAttrs("colspan", "rowspan").OnElements("td")
	p.AllowAttrs("colspan", "rowspan", "scope").OnElements("th")
	p.AllowAttrs("title").OnElements("abbr", "acronym")
	p.AllowAttrs("datetime").OnElements("time")
	p.AllowAttrs("class").Globally()

	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)

	return &Sanitizer{policy: p}
}

func (s *Sanitizer) Run(html string) string {
	return s.policy.Sanitize(html)
}

// textContent renders HTML to collapsed plain text, used to judge whether
// feed content is substantial or just an excerpt.
func textContent(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
