package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// authorMetaSelectors are tried in order when resolving an author from
// page metadata.
var authorMetaSelectors = []string{
	`meta[property="og:novel:author"]`,
	`meta[property="book:author"]`,
	`meta[name="author"]`,
}

// contentSelectors are the generic content containers scanned when the
// author or description could not be resolved from metadata tags.
var contentSelectors = []string{
	"div.book-detail", "div.book-info", "div.detail", "div.intro", "div.main",
}

// extractMeta is the generic metadata extractor shared by every strategy
// and used as the default strategy. It never fails: unresolvable fields
// come back as sentinels.
func extractMeta(doc *goquery.Document, pageURL string) RawMetadata {
	domain := domainOf(pageURL)

	sourceName := UnknownSource
	if label, ok := domainNameMap[domain]; ok {
		sourceName = label
	} else if siteName := metaContent(doc, `meta[property="og:site_name"]`); siteName != "" {
		sourceName = siteName
	} else if domain != "" {
		sourceName = domain
	}

	rawTitle := metaContent(doc, `meta[property="og:title"]`)
	if rawTitle == "" {
		rawTitle = strings.TrimSpace(doc.Find("title").First().Text())
	}
	title := cleanTitle(rawTitle)

	rawAuthor := UnknownAuthor
	for _, sel := range authorMetaSelectors {
		if content := metaContent(doc, sel); content != "" {
			rawAuthor = content
			break
		}
	}
	if rawAuthor == UnknownAuthor {
		if candidate, ok := authorFromUnderscoreTitle(rawTitle); ok {
			rawAuthor = candidate
		}
	}
	author := cleanAuthor(rawAuthor)

	if author == UnknownAuthor {
		if t, a, ok := splitTitleByAuthor(title); ok {
			title = t
			author = cleanAuthor(a)
		}
	}

	description := NoDescription
	if metaDesc := metaContent(doc, `meta[property="og:description"], meta[name="description"]`); metaDesc != "" && !isSpamDescription(metaDesc) {
		description = cleanText(metaDesc)
	}

	if author == UnknownAuthor || description == NoDescription {
		block := longestContentBlock(doc)
		if block != "" {
			info := parseInfoFromText(block)
			if author == UnknownAuthor && info.author != "" {
				author = cleanAuthor(info.author)
			}
			if description == NoDescription && info.description != "" {
				description = info.description
			}
		}
	}

	return RawMetadata{
		Title:       title,
		Author:      author,
		Description: description,
		SourceName:  sourceName,
		URL:         pageURL,
	}
}

// metaContent returns the trimmed content attribute of the first element
// matching the selector, or "".
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// authorFromUnderscoreTitle recovers the author from SEO titles of the
// form "書名_作者_網站名". The middle segment is only accepted when its
// length is plausible for a name.
func authorFromUnderscoreTitle(rawTitle string) (string, bool) {
	if !strings.Contains(rawTitle, "_") {
		return "", false
	}
	parts := strings.Split(rawTitle, "_")
	if len(parts) < 3 {
		return "", false
	}
	candidate := strings.TrimSpace(parts[1])
	if n := len([]rune(candidate)); n <= 1 || n >= 10 {
		return "", false
	}
	return candidate, true
}

// longestContentBlock blind-scans the generic container selectors and
// returns the longest non-spam text block found.
func longestContentBlock(doc *goquery.Document) string {
	best := ""
	for _, sel := range contentSelectors {
		element := doc.Find(sel).First()
		if element.Length() == 0 {
			continue
		}
		text := cleanText(element.Text())
		if text == "" || isSpamDescription(text) {
			continue
		}
		if len(text) > len(best) {
			best = text
		}
	}
	return best
}
