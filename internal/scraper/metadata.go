// Package scraper turns a book URL into a normalized metadata record.
//
// Each supported site has its own parsing strategy selected by URL
// substring matching; every strategy degrades to the shared generic
// metadata extractor instead of failing, so a successful fetch always
// yields a fully populated record. Fields that cannot be resolved carry
// well-known sentinel values rather than being left empty.
package scraper

import (
	"net/url"
	"strings"
)

// Sentinel values. Downstream matching logic relies on these instead of
// empty fields.
const (
	UnknownTitle  = "未知標題"
	UnknownAuthor = "未知作者"
	UnknownSource = "未知來源"
	NoDescription = "無法抓取文案"
)

// RawMetadata is the scraper's output record. Every field is always
// populated with either real content or a sentinel.
type RawMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	SourceName  string `json:"source_name"`
	URL         string `json:"url"`
}

// domainNameMap resolves a bare domain to a human-readable source label.
// Maintained by hand; unknown domains fall back to og:site_name and then
// the raw domain string.
var domainNameMap = map[string]string{
	"ixdzs8.com":    "愛下電子書",
	"tw.ixdzs8.com": "愛下電子書",
	"69shu.com":     "69書吧",
	"69shuba.com":   "69書吧",
	"sto.cx":        "思兔閱讀",
	"sto520.com":    "思兔閱讀",
	"qidian.com":    "起點中文網",
	"popo.tw":       "POPO原創",
	"books.com.tw":  "博客來",
	"czbooks.net":   "小說狂人",
	"jjwxc.net":     "晉江文學城",
	"banxia.co":     "半夏小說",
}

// unsupportedHostMarkers identify host classes that never serve scrapable
// book pages (cloud-drive links and the like). They are rejected before
// any network call.
var unsupportedHostMarkers = []string{
	"drive.google",
	"docs.google",
	"mega.nz",
}

// IsUnsupportedHost reports whether the URL belongs to a host class the
// scraper refuses to fetch.
func IsUnsupportedHost(pageURL string) bool {
	for _, marker := range unsupportedHostMarkers {
		if strings.Contains(pageURL, marker) {
			return true
		}
	}
	return false
}

// domainOf extracts the bare domain from a URL, without the www prefix.
func domainOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
