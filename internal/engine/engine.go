// Package engine invokes provider clients with bounded retries and
// exponential backoff. Failures never escape as errors: every failed call
// resolves to a plain string beginning with "Error", and callers use that
// prefix as the sole failure signal.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/everstacklabs/ereuna/internal/provider"
)

const (
	defaultMaxRetries = 3
	defaultTimeout    = 60 * time.Second
)

// ClientSource resolves a model identifier to a provider client, or nil
// when the provider is unavailable.
type ClientSource interface {
	Get(modelID string) provider.Client
}

// Recorder observes individual call attempts. The prometheus implementation
// lives in internal/metrics.
type Recorder interface {
	RecordCall(provider, operation, status, classification string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordCall(string, string, string, string, time.Duration) {}

// Engine applies the retry policy around provider calls.
type Engine struct {
	source       ClientSource
	maxRetries   int
	timeout      time.Duration
	systemPrompt string
	maxTokens    int
	backoffBase  time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	recorder     Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRetries bounds the number of attempts per call.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithTimeout bounds each individual provider call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSystemPrompt sets the system prompt sent on every call.
func WithSystemPrompt(s string) Option {
	return func(e *Engine) { e.systemPrompt = s }
}

// WithMaxTokens sets the completion token limit passed to providers.
func WithMaxTokens(n int) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// WithRecorder sets the call metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// New creates an Engine over the given client source.
func New(source ClientSource, opts ...Option) *Engine {
	e := &Engine{
		source:      source,
		maxRetries:  defaultMaxRetries,
		timeout:     defaultTimeout,
		backoffBase: time.Second,
		sleep:       sleepContext,
		recorder:    noopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoke sends prompt to the model's provider and returns the generated
// text. label is a human-readable operation name used in diagnostics and
// error strings. All failures come back as "Error..."-prefixed strings.
func (e *Engine) Invoke(ctx context.Context, modelID, prompt, label string) string {
	client := e.source.Get(modelID)
	if client == nil {
		return fmt.Sprintf("Error: Model '%s' is not supported or API client not initialized. Please check your API keys.", modelID)
	}

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		slog.Info("invoking provider",
			"label", label,
			"model", modelID,
			"attempt", attempt+1,
			"max_attempts", e.maxRetries)

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		start := time.Now()
		text, err := client.Complete(callCtx, provider.Request{
			Model:        modelID,
			SystemPrompt: e.systemPrompt,
			Prompt:       prompt,
			MaxTokens:    e.maxTokens,
		})
		duration := time.Since(start)
		cancel()

		if err == nil && strings.TrimSpace(text) == "" {
			err = provider.ErrEmptyResponse
		}
		if err == nil {
			e.recorder.RecordCall(client.Name(), label, "success", "none", duration)
			slog.Info("generation succeeded", "label", label, "attempt", attempt+1)
			return text
		}

		class := Classify(err)
		e.recorder.RecordCall(client.Name(), label, "error", class.String(), duration)
		slog.Error("generation attempt failed",
			"label", label,
			"attempt", attempt+1,
			"classification", class.String(),
			"error", err)

		switch class {
		case ClassAuth:
			return fmt.Sprintf("Error: Invalid API key. Please check your %s API key configuration.", client.Name())

		case ClassPermission:
			return "Error: Permission denied. Please check your API key permissions."

		case ClassRateLimit:
			if attempt >= e.maxRetries-1 {
				return fmt.Sprintf("Error: API rate limit exceeded for %s. Please try again later.", label)
			}
			// Quota windows reset slowly; back off twice as long.
			if msg := e.backoff(ctx, 2*e.backoffBase<<attempt, label); msg != "" {
				return msg
			}

		case ClassTimeout:
			if attempt >= e.maxRetries-1 {
				return fmt.Sprintf("Error: Request timeout for %s. Please check your connection and try again.", label)
			}
			if msg := e.backoff(ctx, e.backoffBase<<attempt, label); msg != "" {
				return msg
			}

		default: // empty response, unknown
			if attempt >= e.maxRetries-1 {
				return fmt.Sprintf("Error generating %s: %v", label, err)
			}
			if msg := e.backoff(ctx, e.backoffBase<<attempt, label); msg != "" {
				return msg
			}
		}
	}

	return fmt.Sprintf("Error: Failed to generate %s after %d attempts. Please try again later.", label, e.maxRetries)
}

// backoff waits for d, honoring cancellation. A non-empty return is the
// Error string to surface.
func (e *Engine) backoff(ctx context.Context, d time.Duration, label string) string {
	slog.Info("backing off before retry", "label", label, "wait", d)
	if err := e.sleep(ctx, d); err != nil {
		return fmt.Sprintf("Error generating %s: %v", label, err)
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsErrorText reports whether a generation result carries the failure
// prefix used across the report mapping.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, "Error")
}
