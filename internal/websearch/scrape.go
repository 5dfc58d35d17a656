package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/everstacklabs/ereuna/internal/cache"
	"github.com/everstacklabs/ereuna/internal/htmlutil"
	"github.com/everstacklabs/ereuna/internal/httpclient"
)

// maxPageText caps the amount of text kept per page so one long article
// cannot swamp a prompt.
const maxPageText = 32 * 1024

// Page is the scraped content of one URL.
type Page struct {
	URL    string
	Text   string
	Tables []string
}

// Scraper fetches a page and returns its readable content.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (*Page, error)
}

// PageScraper fetches pages over the shared HTTP client and extracts
// their text and tables. A cache, when configured, short-circuits
// repeat fetches of the same URL.
type PageScraper struct {
	client *httpclient.Client
	cache  *cache.PageCache
}

// NewPageScraper creates a scraper. pages may be nil to disable caching.
func NewPageScraper(client *httpclient.Client, pages *cache.PageCache) *PageScraper {
	return &PageScraper{client: client, cache: pages}
}

// Scrape returns the visible text and tables of the page at pageURL.
// Text is truncated to maxPageText bytes. Cached pages carry text only.
func (s *PageScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	if s.cache != nil {
		if text, ok := s.cache.Get(pageURL); ok {
			return &Page{URL: pageURL, Text: text}, nil
		}
	}

	resp, err := s.client.Get(ctx, pageURL, map[string]string{
		"Accept":     "text/html",
		"User-Agent": browserUserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	doc, err := htmlutil.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	text := htmlutil.ExtractText(doc)
	if len(text) > maxPageText {
		text = text[:maxPageText]
	}

	if s.cache != nil {
		if err := s.cache.Set(pageURL, text); err != nil {
			slog.Warn("failed to cache page text", "url", pageURL, "error", err)
		}
	}
	return &Page{URL: pageURL, Text: text, Tables: htmlutil.Tables(doc)}, nil
}

// ScrapeAll scrapes every result, skipping unreachable or empty pages.
func ScrapeAll(ctx context.Context, s Scraper, results []Result) []*Page {
	var pages []*Page
	for _, r := range results {
		page, err := s.Scrape(ctx, r.URL)
		if err != nil {
			slog.Warn("skipping unreachable page", "url", r.URL, "error", err)
			continue
		}
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// JoinPages concatenates page texts, each prefixed by its source URL.
func JoinPages(pages []*Page) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "Source: %s\n%s\n\n", p.URL, p.Text)
	}
	return strings.TrimSpace(b.String())
}
