// Package provider defines the text-generation client interface, maps model
// identifiers to provider families, and manages per-family client handles.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/everstacklabs/ereuna/internal/httpclient"
)

// ErrEmptyResponse signals a completion that came back empty or
// whitespace-only. The engine treats it as a retryable failure.
var ErrEmptyResponse = errors.New("provider returned an empty response")

// Request is a single text-generation call. The shape is the same across
// families; adapters translate it to each API's wire format.
type Request struct {
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
}

// Client issues text-generation calls against one provider family.
type Client interface {
	// Name returns the provider family (e.g. "gemini").
	Name() string
	// Complete sends one prompt and returns one text.
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a normalized provider API failure. No provider-native error
// type crosses the package boundary.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Family returns the provider family encoded as the leading token of a
// model identifier, e.g. "gemini-2.5-flash" → "gemini". Pure function.
func Family(modelID string) string {
	family, _, _ := strings.Cut(modelID, "-")
	return family
}

// Options carries what a factory needs to build a client.
type Options struct {
	APIKey  string
	BaseURL string
	Client  *httpclient.Client
}

// Factory constructs a client for one provider family.
type Factory func(Options) Client

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory adds a client factory for a provider family. Provider
// subpackages call this from init().
func RegisterFactory(family string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[family] = f
}

func factoryFor(family string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[family]
	return f, ok
}

// Families returns the registered provider family names.
func Families() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
