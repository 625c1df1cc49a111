package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseJjwxc handles 晉江文學城 book pages. The structured layout uses
// schema.org itemprops; anything missing degrades to generic extraction.
func parseJjwxc(doc *goquery.Document, pageURL string) RawMetadata {
	titleSel := doc.Find(`h1[itemprop="name"]`).First()
	if titleSel.Length() == 0 {
		titleSel = doc.Find("span.bigtext").First()
	}

	if titleSel.Length() > 0 {
		title := cleanTitle(strings.TrimSpace(titleSel.Text()))
		description := cleanText(doc.Find("div#novelintro").First().Text())

		if title != UnknownTitle && description != "" {
			description = strings.TrimSpace(strings.ReplaceAll(description, "文案：", ""))

			author := UnknownAuthor
			if authorSel := doc.Find(`span[itemprop="author"]`).First(); authorSel.Length() > 0 {
				author = cleanAuthor(strings.TrimSpace(authorSel.Text()))
			}

			return RawMetadata{
				Title:       title,
				Author:      author,
				Description: description,
				SourceName:  "晉江文學城",
				URL:         pageURL,
			}
		}
	}

	md := extractMeta(doc, pageURL)
	md.SourceName = "晉江文學城 (Meta)"
	return md
}

// parseBanxia handles 半夏小說 and its mirror layouts (69shu shares the
// same page shape). Two structured layouts are tried before the generic
// fallback.
func parseBanxia(doc *goquery.Document, pageURL string) RawMetadata {
	infoBlock := doc.Find("div.book-describe").First()
	if infoBlock.Length() == 0 {
		infoBlock = doc.Find("div.book-info").First()
	}

	if infoBlock.Length() > 0 {
		title := ""
		if h1 := infoBlock.Find("h1").First(); h1.Length() > 0 {
			title = cleanTitle(strings.TrimSpace(h1.Text()))
		}
		// A short title equal to the site brand means the selector hit
		// site chrome, not the book page.
		if strings.Contains(title, "半夏小說") && len([]rune(title)) < 6 {
			title = ""
		}

		if title != "" && title != UnknownTitle {
			info := parseInfoFromText(cleanText(infoBlock.Text()))

			author := UnknownAuthor
			if info.author != "" {
				author = cleanAuthor(info.author)
			}
			description := NoDescription
			if info.description != "" {
				description = info.description
			}

			return RawMetadata{
				Title:       title,
				Author:      author,
				Description: description,
				SourceName:  "半夏小說",
				URL:         pageURL,
			}
		}
	}

	// Older layout: book-info/detail block with an author link and a
	// separate intro container.
	if doc.Find("div.book-describe").Length() == 0 {
		infoDiv := doc.Find("div.book-info").First()
		if infoDiv.Length() == 0 {
			infoDiv = doc.Find("div.detail").First()
		}
		if infoDiv.Length() > 0 {
			title := cleanTitle(strings.TrimSpace(infoDiv.Find("h1").First().Text()))

			author := UnknownAuthor
			infoDiv.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if strings.Contains(href, "/author/") {
					author = cleanAuthor(strings.TrimSpace(a.Text()))
					return false
				}
				return true
			})

			description := NoDescription
			descSel := doc.Find("div.intro").First()
			if descSel.Length() == 0 {
				descSel = doc.Find("p.intro").First()
			}
			if descSel.Length() > 0 {
				if text := cleanText(descSel.Text()); text != "" {
					description = text
				}
			}

			return RawMetadata{
				Title:       title,
				Author:      author,
				Description: description,
				SourceName:  "半夏小說",
				URL:         pageURL,
			}
		}
	}

	md := extractMeta(doc, pageURL)
	md.SourceName = "半夏小說 (Meta)"
	return md
}

// parseCzbooks handles 小說狂人. All three structured fields must resolve
// or the page degrades to generic extraction.
func parseCzbooks(doc *goquery.Document, pageURL string) RawMetadata {
	title := strings.TrimSpace(doc.Find("span.title").First().Text())
	author := strings.TrimSpace(doc.Find("span.author").First().Text())
	description := cleanText(doc.Find("div.description").First().Text())

	if title != "" && author != "" && description != "" {
		return RawMetadata{
			Title:       cleanTitle(title),
			Author:      cleanAuthor(author),
			Description: description,
			SourceName:  "小說狂人",
			URL:         pageURL,
		}
	}

	md := extractMeta(doc, pageURL)
	md.SourceName = "小說狂人 (Meta)"
	return md
}

// parseBooksRetailer handles 博客來 product pages.
func parseBooksRetailer(doc *goquery.Document, pageURL string) RawMetadata {
	md := extractMeta(doc, pageURL)
	md.SourceName = "博客來"

	// Retailer pages carry the book synopsis in the product content
	// block, which og:description truncates.
	if intro := cleanText(doc.Find("div.content").First().Text()); intro != "" && !isSpamDescription(intro) {
		if len(intro) > len(md.Description) || md.Description == NoDescription {
			md.Description = intro
		}
	}

	// A title equal to the store brand means the product page did not
	// render.
	if md.Title == "博客來" {
		md.Title = UnknownTitle
	}
	return md
}

// parsePopo handles POPO原創. The pages are metadata-friendly, so this is
// generic extraction plus a brand-title plausibility check.
func parsePopo(doc *goquery.Document, pageURL string) RawMetadata {
	md := extractMeta(doc, pageURL)
	md.SourceName = "POPO原創"
	if md.Title == "POPO原創" || md.Title == "POPO原創市集" {
		md.Title = UnknownTitle
	}
	return md
}

// parseFC2 handles password-gated FC2 blog entries. The unlock dance
// happens at fetch time; by parse time the document is either unlocked or
// the original locked page, and generic extraction applies to both.
func parseFC2(doc *goquery.Document, pageURL string) RawMetadata {
	md := extractMeta(doc, pageURL)
	if md.SourceName == UnknownSource || md.SourceName == domainOf(pageURL) {
		md.SourceName = "Egg"
	}
	return md
}
