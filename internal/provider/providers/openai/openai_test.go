package openai

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
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("bearer token not sent")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"the methodology"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.Complete(context.Background(), provider.Request{
		Model:        "gpt-4o",
		SystemPrompt: "be precise",
		Prompt:       "write the methodology",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "the methodology" {
		t.Errorf("Complete() = %q, want %q", got, "the methodology")
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("messages = %+v, want [system, user]", captured.Messages)
	}
}

func TestCompleteOmitsSystemMessageWhenUnset(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Complete(context.Background(), provider.Request{Model: "gpt-4o", Prompt: "hi"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want a single user message", captured.Messages)
	}
}

func TestCompleteRateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), provider.Request{Model: "gpt-4o", Prompt: "hi"})

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() error = %v, want *provider.APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Complete(context.Background(), provider.Request{Model: "gpt-4o", Prompt: "hi"})
	if !errors.Is(err, provider.ErrEmptyResponse) {
		t.Errorf("Complete() error = %v, want ErrEmptyResponse", err)
	}
}
