package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/provider"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		apiKey:  "test-key",
		baseURL: serverURL,
		http:    httpclient.New(httpclient.WithRateLimit(1000)),
	}
}

func TestCompleteSuccess(t *testing.T) {
	var captured messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("x-api-key header not sent")
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("anthropic-version = %q, want %q", r.Header.Get("anthropic-version"), apiVersion)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"the conclusion"}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.Complete(context.Background(), provider.Request{
		Model:        "claude-sonnet-4-20250514",
		SystemPrompt: "be thorough",
		Prompt:       "write the conclusion",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "the conclusion" {
		t.Errorf("Complete() = %q, want %q", got, "the conclusion")
	}
	if captured.System != "be thorough" {
		t.Errorf("system = %q, want %q", captured.System, "be thorough")
	}
	if captured.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d", captured.MaxTokens, defaultMaxTokens)
	}
}

func TestCompleteAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), provider.Request{Model: "claude-sonnet-4-20250514", Prompt: "hi"})

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() error = %v, want *provider.APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid x-api-key" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "invalid x-api-key")
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), provider.Request{Model: "claude-sonnet-4-20250514", Prompt: "hi"})
	if !errors.Is(err, provider.ErrEmptyResponse) {
		t.Errorf("Complete() error = %v, want ErrEmptyResponse", err)
	}
}
