// Package websearch provides the web search and page scraping collaborators
// used by the chat fallback path.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/everstacklabs/ereuna/internal/htmlutil"
	"github.com/everstacklabs/ereuna/internal/httpclient"
)

// Result is a single search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Searcher executes a query and returns result links.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]Result, error)
}

const liteEndpoint = "https://lite.duckduckgo.com/lite/"

// Some sites refuse requests without a browser User-Agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DuckDuckGo searches the DuckDuckGo lite HTML interface. No API key is
// required; the shared client's rate limit keeps request volume polite.
type DuckDuckGo struct {
	client   *httpclient.Client
	endpoint string
}

// NewDuckDuckGo creates a DuckDuckGo searcher over the shared HTTP client.
func NewDuckDuckGo(client *httpclient.Client) *DuckDuckGo {
	return &DuckDuckGo{client: client, endpoint: liteEndpoint}
}

// Search fetches the lite results page and parses result links.
func (d *DuckDuckGo) Search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if numResults <= 0 {
		numResults = 5
	}

	resp, err := d.client.Get(ctx, d.endpoint+"?q="+url.QueryEscape(query), map[string]string{
		"Accept":     "text/html",
		"User-Agent": browserUserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}

	doc, err := htmlutil.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	results := parseResults(doc, numResults)
	slog.Info("web search complete", "query", query, "results", len(results))
	return results, nil
}

// parseResults pulls result links out of the lite page. The page marks
// them with the result-link class; a generic link scan is the fallback
// when the markup shifts.
func parseResults(doc *goquery.Document, limit int) []Result {
	var results []Result
	seen := make(map[string]bool)

	collect := func(_ int, s *goquery.Selection) {
		if len(results) >= limit {
			return
		}
		href, ok := s.Attr("href")
		title := strings.TrimSpace(s.Text())
		if !ok || title == "" {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || seen[href] || !strings.HasPrefix(href, "http") {
			return
		}
		if strings.Contains(href, "duckduckgo.com") {
			return
		}
		seen[href] = true
		results = append(results, Result{Title: title, URL: href})
	}

	doc.Find("a.result-link").Each(collect)
	if len(results) == 0 {
		doc.Find("a").Each(collect)
	}
	return results
}
