package scraper

import (
	"regexp"
	"strings"
)

// spamHitThreshold is how many promotional boilerplate phrases a
// description may contain before it is rejected as SEO spam. Empirical;
// tune here.
const spamHitThreshold = 2

var spamKeywords = []string{
	"情節跌宕起伏", "扣人心弦", "免費提供", "清爽乾淨", "無彈窗", "最新章節", "全文閱讀",
}

// platformNameMarkers identify author values that are actually publisher
// or platform names and must be downgraded to the unknown sentinel.
var platformNameMarkers = []string{
	"晉江", "起點", "筆趣", "半夏", "博客來", "popo", "bookwalker", "books.com",
}

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	entityRe     = regexp.MustCompile(`&[a-zA-Z]+;`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	titleBracketRe   = regexp.MustCompile(`[《》【】\[\]]`)
	titleSeparatorRe = regexp.MustCompile(`[|_]`)
	// Trailing SEO clause: a dash/comma separator followed by anything
	// containing a blacklisted keyword, through to the end of the title.
	seoClauseRe = regexp.MustCompile(`(?i)\s*[-,]+\s*.*(小說|全文|閱讀|最新|章節|下載|txt|筆趣閣|半夏|晉江|起點|無彈窗|手機版|online|read|chapter|download).*$`)

	authorLabelRe = regexp.MustCompile(`(?i)^(作者|Author|著|編|编)\s*[：:︰]?\s*`)

	inlineAuthorRe = regexp.MustCompile(`作者[：:︰]\s*(\S+)`)
	inlineDescRe   = regexp.MustCompile(`(?s)(作品簡介|內容簡介|簡介)[：:︰]\s*(.*)`)

	byAuthorRe = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)
)

// cleanText strips residual markup, HTML entities and collapses
// whitespace.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, "")
	text = entityRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// cleanTitle removes site decoration from a raw page title: bracket
// characters, separator suffixes, trailing SEO keyword clauses and the
// duplicated-clause pattern "A,B" where A repeats inside B.
func cleanTitle(rawTitle string) string {
	if strings.TrimSpace(rawTitle) == "" {
		return UnknownTitle
	}
	title := titleBracketRe.ReplaceAllString(rawTitle, "")
	title = strings.TrimSpace(titleSeparatorRe.Split(title, 2)[0])
	title = strings.TrimSpace(seoClauseRe.ReplaceAllString(title, ""))

	if strings.Contains(title, ",") {
		parts := strings.SplitN(title, ",", 2)
		head := strings.TrimSpace(parts[0])
		if len([]rune(head)) > 1 && strings.Contains(parts[1], head) {
			title = head
		}
	}

	if title == "" {
		return UnknownTitle
	}
	return title
}

// cleanAuthor strips leading label words ("作者:", "by" prefixes written
// as 著/編) and downgrades platform names to the unknown sentinel.
func cleanAuthor(rawAuthor string) string {
	if rawAuthor == "" || rawAuthor == UnknownAuthor {
		return UnknownAuthor
	}
	author := strings.TrimSpace(authorLabelRe.ReplaceAllString(rawAuthor, ""))
	if author == "" || isPlatformName(author) {
		return UnknownAuthor
	}
	return author
}

func isPlatformName(author string) bool {
	lower := strings.ToLower(author)
	for _, marker := range platformNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isSpamDescription rejects descriptions assembled from promotional
// boilerplate rather than an actual synopsis.
func isSpamDescription(text string) bool {
	hits := 0
	for _, kw := range spamKeywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits >= spamHitThreshold
}

// splitTitleByAuthor attempts the "<title> by <author>" pattern on a
// cleaned title. The author candidate is only accepted when its length is
// plausible for a name (1-20 characters).
func splitTitleByAuthor(title string) (string, string, bool) {
	m := byAuthorRe.FindStringSubmatch(title)
	if m == nil {
		return title, "", false
	}
	candidate := strings.TrimSpace(m[2])
	if n := len([]rune(candidate)); n < 1 || n > 20 {
		return title, "", false
	}
	return strings.TrimSpace(m[1]), candidate, true
}

// parsedInfo holds author/synopsis text recovered from a free-text block.
type parsedInfo struct {
	author      string
	description string
}

// parseInfoFromText scans a content block for explicitly labeled author
// and synopsis text, truncating the synopsis at a "latest chapter" marker
// when present.
func parseInfoFromText(text string) parsedInfo {
	var info parsedInfo
	if m := inlineAuthorRe.FindStringSubmatch(text); m != nil {
		info.author = strings.TrimSpace(m[1])
	}
	if m := inlineDescRe.FindStringSubmatch(text); m != nil {
		desc := strings.TrimSpace(m[2])
		if idx := strings.Index(desc, "最新章節"); idx >= 0 {
			desc = strings.TrimSpace(desc[:idx])
		}
		info.description = desc
	}
	return info
}
