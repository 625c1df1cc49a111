package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", UnknownTitle},
		{"brackets stripped", "《鎮魂》", "鎮魂"},
		{"pipe separator", "鎮魂|晉江文學城", "鎮魂"},
		{"underscore separator", "鎮魂_priest_愛下電子書", "鎮魂"},
		{"seo clause", "Some Title - Chapter List - 筆趣閣", "Some Title"},
		{"seo clause chinese", "鎮魂-最新章節下載", "鎮魂"},
		{"duplicated clause", "鎮魂,鎮魂全文免費", "鎮魂"},
		{"plain title kept", "鎮魂", "鎮魂"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanTitle(tt.input))
		})
	}
}

func TestCleanAuthor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", UnknownAuthor},
		{"sentinel", UnknownAuthor, UnknownAuthor},
		{"label prefix", "作者：priest", "priest"},
		{"english label", "Author: John Doe", "John Doe"},
		{"bare name", "priest", "priest"},
		{"platform name rejected", "晉江文學城", UnknownAuthor},
		{"platform name english", "BOOKWALKER", UnknownAuthor},
		{"label only", "作者：", UnknownAuthor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanAuthor(tt.input))
		})
	}
}

func TestSplitTitleByAuthor(t *testing.T) {
	title, author, ok := splitTitleByAuthor("Some Title by John Doe")
	assert.True(t, ok)
	assert.Equal(t, "Some Title", title)
	assert.Equal(t, "John Doe", author)

	_, _, ok = splitTitleByAuthor("No author marker here")
	assert.False(t, ok)

	// Author candidates longer than 20 characters are implausible names.
	_, _, ok = splitTitleByAuthor("Title by " + strings.Repeat("x", 30))
	assert.False(t, ok)
}

func TestIsSpamDescription(t *testing.T) {
	assert.True(t, isSpamDescription("本站免費提供鎮魂最新章節"))
	assert.False(t, isSpamDescription("免費提供"))
	assert.False(t, isSpamDescription("一個關於靈魂與救贖的故事"))
}

func TestParseInfoFromText(t *testing.T) {
	info := parseInfoFromText("作者：priest 內容簡介：一個故事 最新章節 第一章")
	assert.Equal(t, "priest", info.author)
	assert.Equal(t, "一個故事", info.description)

	info = parseInfoFromText("nothing labeled here")
	assert.Empty(t, info.author)
	assert.Empty(t, info.description)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractMetaResolvesFromOpenGraph(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta property="og:site_name" content="某小說站">
		<meta property="og:title" content="《鎮魂》">
		<meta property="og:novel:author" content="作者：priest">
		<meta property="og:description" content="一個關於靈魂與救贖的故事">
	</head><body></body></html>`)

	md := extractMeta(doc, "https://example.com/book/1")
	assert.Equal(t, "鎮魂", md.Title)
	assert.Equal(t, "priest", md.Author)
	assert.Equal(t, "一個關於靈魂與救贖的故事", md.Description)
	assert.Equal(t, "某小說站", md.SourceName)
	assert.Equal(t, "https://example.com/book/1", md.URL)
}

func TestExtractMetaDomainLookupWinsOverSiteName(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta property="og:site_name" content="whatever">
		<title>鎮魂</title>
	</head><body></body></html>`)

	md := extractMeta(doc, "https://www.qidian.com/book/1")
	assert.Equal(t, "起點中文網", md.SourceName)
}

func TestExtractMetaFallsBackToDomain(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>鎮魂</title></head><body></body></html>`)

	md := extractMeta(doc, "https://www.example.com/book/1")
	assert.Equal(t, "example.com", md.SourceName)
}

func TestExtractMetaByAuthorSplit(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>Some Title by John Doe</title></head><body></body></html>`)

	md := extractMeta(doc, "https://example.com/book/1")
	assert.Equal(t, "Some Title", md.Title)
	assert.Equal(t, "John Doe", md.Author)
}

func TestExtractMetaUnderscoreAuthor(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>鎮魂_priest_愛下電子書</title></head><body></body></html>`)

	md := extractMeta(doc, "https://example.com/book/1")
	assert.Equal(t, "鎮魂", md.Title)
	assert.Equal(t, "priest", md.Author)
}

func TestExtractMetaSpamDescriptionFallsThrough(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<title>鎮魂</title>
		<meta name="description" content="免費提供鎮魂最新章節全文閱讀">
	</head><body>
		<div class="book-info">作者：priest 簡介：沉默寡言的教授與刑偵處長的故事 最新章節 第十章</div>
	</body></html>`)

	md := extractMeta(doc, "https://example.com/book/1")
	assert.Equal(t, "priest", md.Author)
	assert.Equal(t, "沉默寡言的教授與刑偵處長的故事", md.Description)
}

func TestExtractMetaAllSentinelsWhenPageIsEmpty(t *testing.T) {
	doc := mustDoc(t, `<html><head></head><body></body></html>`)

	md := extractMeta(doc, "https://example.com/book/1")
	assert.Equal(t, UnknownTitle, md.Title)
	assert.Equal(t, UnknownAuthor, md.Author)
	assert.Equal(t, NoDescription, md.Description)
	assert.Equal(t, "example.com", md.SourceName)
}
