package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent mimics a desktop browser; several of the supported
// sites refuse obviously non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrUnsupportedHost marks URLs rejected before any network call.
var ErrUnsupportedHost = errors.New("unsupported host")

// Config controls request behavior.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	FC2Password string // unlock password for gated FC2 entries; empty disables unlocking
}

// Scraper fetches book pages and parses them through per-site strategies.
type Scraper struct {
	client      *http.Client
	userAgent   string
	fc2Password string
}

// New creates a Scraper. A zero timeout defaults to 15 seconds.
func New(cfg Config) *Scraper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Scraper{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		fc2Password: cfg.FC2Password,
	}
}

// Scrape fetches the page and returns its metadata record. Network
// failures, non-success statuses and unsupported hosts return an error
// and no record; a returned record always has every field populated.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*RawMetadata, error) {
	if IsUnsupportedHost(pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHost, pageURL)
	}

	strat := strategyFor(pageURL)

	doc, err := s.fetchDocument(ctx, pageURL, strat)
	if err != nil {
		return nil, err
	}

	if strat.kind == kindFC2 {
		doc = s.unlockFC2(ctx, pageURL, doc)
	}

	md := strat.parse(doc, pageURL)
	return &md, nil
}

// fetchDocument performs the GET and decodes the body according to the
// strategy's encoding override, auto-detecting otherwise.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string, strat strategy) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	return s.decodeDocument(resp.Body, resp.Header.Get("Content-Type"), strat)
}

func (s *Scraper) decodeDocument(body io.Reader, contentType string, strat strategy) (*goquery.Document, error) {
	var reader io.Reader
	var err error
	if strat.enc != nil {
		reader = strat.enc.NewDecoder().Reader(body)
	} else {
		reader, err = charset.NewReader(body, contentType)
		if err != nil {
			return nil, fmt.Errorf("detect charset: %w", err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// unlockFC2 performs the two-step unlock for password-gated blog
// entries: when the page carries a password form, re-submit all hidden
// fields verbatim together with the configured password. The unlocked
// response is used only when the password field has disappeared from it;
// any failure keeps the original locked page.
func (s *Scraper) unlockFC2(ctx context.Context, pageURL string, doc *goquery.Document) *goquery.Document {
	passInput := doc.Find(`input[name="pass"], input[name="password"]`).First()
	if passInput.Length() == 0 {
		return doc
	}
	if s.fc2Password == "" {
		log.Printf("Page %s is password-gated but no unlock password is configured", pageURL)
		return doc
	}

	passName, _ := passInput.Attr("name")
	form := passInput.Closest("form")

	values := url.Values{}
	form.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		if name == "" {
			return
		}
		value, _ := input.Attr("value")
		values.Set(name, value)
	})
	values.Set(passName, s.fc2Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, strings.NewReader(values.Encode()))
	if err != nil {
		return doc
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Password unlock failed for %s: %v", pageURL, err)
		return doc
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Password unlock failed for %s: status %d", pageURL, resp.StatusCode)
		return doc
	}

	unlocked, err := s.decodeDocument(resp.Body, resp.Header.Get("Content-Type"), strategy{})
	if err != nil {
		return doc
	}

	// Password field still present means the unlock was rejected.
	if unlocked.Find(fmt.Sprintf("input[name=%q]", passName)).Length() > 0 {
		log.Printf("Password unlock rejected for %s", pageURL)
		return doc
	}
	return unlocked
}
