package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/everstacklabs/ereuna/internal/cache"
	"github.com/everstacklabs/ereuna/internal/httpclient"
)

const articlePage = `<html><body>
<script>nope()</script>
<p>Erosion costs farmers billions every year.</p>
<table>
<tr><th>Year</th><th>Cost</th></tr>
<tr><td>2020</td><td>7B</td></tr>
</table>
</body></html>`

func TestScrapeExtractsTextAndTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	s := NewPageScraper(httpclient.New(httpclient.WithRateLimit(1000)), nil)
	page, err := s.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if !strings.Contains(page.Text, "Erosion costs farmers billions") {
		t.Errorf("page text = %q", page.Text)
	}
	if strings.Contains(page.Text, "nope()") {
		t.Error("script content leaked into page text")
	}
	if len(page.Tables) != 1 || !strings.Contains(page.Tables[0], "2020 | 7B") {
		t.Errorf("page tables = %v", page.Tables)
	}
}

func TestScrapeTruncatesLongPages(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("a", maxPageText+500) + "</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))
	defer server.Close()

	s := NewPageScraper(httpclient.New(httpclient.WithRateLimit(1000)), nil)
	page, err := s.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(page.Text) != maxPageText {
		t.Errorf("page text length = %d, want truncated to %d", len(page.Text), maxPageText)
	}
}

func TestScrapeUsesCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	pages, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s := NewPageScraper(httpclient.New(httpclient.WithRateLimit(1000)), pages)

	if _, err := s.Scrape(context.Background(), server.URL); err != nil {
		t.Fatalf("first Scrape() error = %v", err)
	}
	page, err := s.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second Scrape() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1 (second read from cache)", hits)
	}
	if !strings.Contains(page.Text, "Erosion costs farmers billions") {
		t.Errorf("cached page text = %q", page.Text)
	}
}

func TestScrapeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewPageScraper(httpclient.New(httpclient.WithRateLimit(1000)), nil)
	if _, err := s.Scrape(context.Background(), server.URL); err == nil {
		t.Error("404 should be an error")
	}
}

type stubScraper struct {
	pages map[string]*Page
}

func (s stubScraper) Scrape(_ context.Context, url string) (*Page, error) {
	if p, ok := s.pages[url]; ok {
		return p, nil
	}
	return nil, context.DeadlineExceeded
}

func TestScrapeAllSkipsFailures(t *testing.T) {
	s := stubScraper{pages: map[string]*Page{
		"https://a": {URL: "https://a", Text: "alpha text"},
		"https://c": {URL: "https://c", Text: "  "},
	}}
	results := []Result{
		{Title: "A", URL: "https://a"},
		{Title: "B", URL: "https://b"},
		{Title: "C", URL: "https://c"},
	}

	pages := ScrapeAll(context.Background(), s, results)
	if len(pages) != 1 || pages[0].URL != "https://a" {
		t.Fatalf("ScrapeAll() = %v, want only the reachable non-empty page", pages)
	}

	joined := JoinPages(pages)
	if !strings.Contains(joined, "Source: https://a") || !strings.Contains(joined, "alpha text") {
		t.Errorf("JoinPages() = %q", joined)
	}
}
