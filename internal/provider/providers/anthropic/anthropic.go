// Package anthropic implements the provider client for the Anthropic
// Messages API. The registry keys it under the "claude" family.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/provider"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"

	// The Messages API requires max_tokens; used when the request sets none.
	defaultMaxTokens = 2000
)

func init() {
	provider.RegisterFactory("claude", func(opts provider.Options) provider.Client {
		c := &Client{apiKey: opts.APIKey, baseURL: opts.BaseURL, http: opts.Client}
		if c.baseURL == "" {
			c.baseURL = defaultBaseURL
		}
		return c
	})
}

// Client calls the Anthropic messages endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

func (c *Client) Name() string { return "claude" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req provider.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := messagesRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": apiVersion,
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/messages", headers, body)
	if err != nil {
		return "", err
	}

	var parsed messagesResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decoding anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(resp.Body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &provider.APIError{Provider: "claude", StatusCode: resp.StatusCode, Message: msg}
	}
	if parsed.Error != nil {
		return "", &provider.APIError{Provider: "claude", StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", provider.ErrEmptyResponse
	}
	return out, nil
}
