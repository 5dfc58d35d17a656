// Package openai implements the provider client for the OpenAI Chat
// Completions API. The registry keys it under the "gpt" family.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

func init() {
	provider.RegisterFactory("gpt", func(opts provider.Options) provider.Client {
		c := &Client{apiKey: opts.APIKey, baseURL: opts.BaseURL, http: opts.Client}
		if c.baseURL == "" {
			c.baseURL = defaultBaseURL
		}
		return c
	})
}

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

func (c *Client) Name() string { return "gpt" }

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req provider.Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{Model: req.Model, Messages: messages, MaxTokens: req.MaxTokens}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/chat/completions", headers, body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decoding openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(resp.Body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &provider.APIError{Provider: "gpt", StatusCode: resp.StatusCode, Message: msg}
	}
	if parsed.Error != nil {
		return "", &provider.APIError{Provider: "gpt", StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}

	if len(parsed.Choices) == 0 {
		return "", provider.ErrEmptyResponse
	}
	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if out == "" {
		return "", provider.ErrEmptyResponse
	}
	return out, nil
}
