// Package cache provides TTL-based file caching for scraped page text, so
// repeated chat fallbacks do not re-fetch the same sources.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry represents one cached scraped page.
type Entry struct {
	URL      string    `json:"url"`
	Text     string    `json:"text"`
	CachedAt time.Time `json:"cached_at"`
}

// PageCache stores extracted page text on disk, keyed by URL.
type PageCache struct {
	dir string
	ttl time.Duration
}

// New creates a new page cache rooted at dir.
func New(dir string, ttl time.Duration) (*PageCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &PageCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached text for url if present and fresh.
func (c *PageCache) Get(url string) (string, bool) {
	path := c.path(url)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return "", false
	}

	if time.Since(entry.CachedAt) > c.ttl {
		return "", false
	}
	return entry.Text, true
}

// Set stores extracted text for url.
func (c *PageCache) Set(url, text string) error {
	entry := Entry{URL: url, Text: text, CachedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.path(url), data, 0o644)
}

func (c *PageCache) path(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
