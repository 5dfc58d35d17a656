// Package gemini implements the provider client for the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/provider"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func init() {
	provider.RegisterFactory("gemini", func(opts provider.Options) provider.Client {
		c := &Client{apiKey: opts.APIKey, baseURL: opts.BaseURL, http: opts.Client}
		if c.baseURL == "" {
			c.baseURL = defaultBaseURL
		}
		return c
	})
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

func (c *Client) Name() string { return "gemini" }

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req provider.Request) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}
	if req.MaxTokens > 0 {
		body.GenerationConfig = &generationConfig{MaxOutputTokens: req.MaxTokens}
	}

	// The key travels as a header so transport errors, which quote the
	// request URL, never carry the credential.
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, req.Model)
	headers := map[string]string{"x-goog-api-key": c.apiKey}
	resp, err := c.http.PostJSON(ctx, url, headers, body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(resp.Body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &provider.APIError{Provider: "gemini", StatusCode: resp.StatusCode, Message: msg}
	}
	if parsed.Error != nil {
		return "", &provider.APIError{Provider: "gemini", StatusCode: parsed.Error.Code, Message: parsed.Error.Message}
	}

	var text strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		break
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", provider.ErrEmptyResponse
	}
	return out, nil
}
