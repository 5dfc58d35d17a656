package provider

import (
	"log/slog"
	"sync"

	"github.com/everstacklabs/ereuna/internal/httpclient"
)

// Registry lazily constructs and caches one client per provider family.
// Credentials are fixed at construction; exactly one handle exists per
// family for the registry's lifetime.
type Registry struct {
	mu       sync.Mutex
	creds    map[string]string
	baseURLs map[string]string
	http     *httpclient.Client
	clients  map[string]Client
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBaseURLs overrides per-family API base URLs.
func WithBaseURLs(urls map[string]string) RegistryOption {
	return func(r *Registry) {
		for family, url := range urls {
			r.baseURLs[family] = url
		}
	}
}

// WithHTTPClient sets the shared HTTP client handed to provider factories.
func WithHTTPClient(c *httpclient.Client) RegistryOption {
	return func(r *Registry) { r.http = c }
}

// NewRegistry creates a registry over the given family→secret credentials.
func NewRegistry(creds map[string]string, opts ...RegistryOption) *Registry {
	r := &Registry{
		creds:    make(map[string]string, len(creds)),
		baseURLs: make(map[string]string),
		clients:  make(map[string]Client),
	}
	for family, key := range creds {
		r.creds[family] = key
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.http == nil {
		r.http = httpclient.New()
	}
	return r
}

// Get returns the cached client for the model's provider family, building
// it on first use. A missing credential or unrecognized family logs a
// warning and returns nil: the caller must treat nil as "provider
// unavailable", a terminal condition, never retried.
func (r *Registry) Get(modelID string) Client {
	family := Family(modelID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[family]; ok {
		return c
	}

	factory, ok := factoryFor(family)
	if !ok {
		slog.Warn("no API client configured for model prefix", "prefix", family)
		return nil
	}

	apiKey, ok := r.creds[family]
	if !ok || apiKey == "" {
		slog.Warn("API key not provided for model prefix", "prefix", family)
		return nil
	}

	client := factory(Options{
		APIKey:  apiKey,
		BaseURL: r.baseURLs[family],
		Client:  r.http,
	})
	if client == nil {
		slog.Warn("failed to configure API client", "prefix", family)
		return nil
	}

	r.clients[family] = client
	slog.Info("configured API client", "provider", family)
	return client
}
