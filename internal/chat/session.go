// Package chat answers questions about a generated report. Each session
// holds its own history and loaded research content; answers are gated
// by a relevance check against the research topic, and fall back to a
// web search when the research itself cannot answer.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/everstacklabs/ereuna/internal/engine"
	"github.com/everstacklabs/ereuna/internal/prompt"
	"github.com/everstacklabs/ereuna/internal/report"
	"github.com/everstacklabs/ereuna/internal/websearch"
)

// contentLimit caps how much research text goes into a chat prompt. The
// most recent characters win, so later sections take precedence.
const contentLimit = 8000

// SystemPrompt is the system prompt chat engines should be configured
// with. It keeps answers anchored to the loaded research.
const SystemPrompt = "You are a helpful assistant that answers questions ONLY based on the provided research content. If the answer is not in the content, state that you don't have enough information."

// externalSourcesNote prefixes answers built from web results instead of
// the loaded research.
const externalSourcesNote = "Note: this answer draws on external web sources, not the original research report.\n\n"

// Turn is one user/assistant exchange.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is a single chat conversation over one report. It is owned by
// one caller and is not safe for concurrent use.
type Session struct {
	eng      *engine.Engine
	prompts  *prompt.Store
	searcher websearch.Searcher
	scraper  websearch.Scraper

	modelID string
	topic   string
	content string
	history []Turn
}

// Option configures a Session.
type Option func(*Session)

// WithWebFallback enables the web search fallback for questions the
// research cannot answer.
func WithWebFallback(searcher websearch.Searcher, scraper websearch.Scraper) Option {
	return func(s *Session) {
		s.searcher = searcher
		s.scraper = scraper
	}
}

// NewSession creates a chat session for the given topic and model.
func NewSession(eng *engine.Engine, prompts *prompt.Store, modelID, topic string, opts ...Option) *Session {
	s := &Session{
		eng:     eng,
		prompts: prompts,
		modelID: modelID,
		topic:   topic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadResearch makes the report's sections available as chat grounding.
func (s *Session) LoadResearch(rep *report.Report) {
	if rep == nil || rep.Len() == 0 {
		slog.Warn("no research content provided to chat session")
		return
	}
	s.content = rep.Joined()
	slog.Info("research content loaded for chat", "chars", len(s.content))
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Clear discards the conversation history. Loaded research stays.
func (s *Session) Clear() {
	s.history = nil
}

// Respond answers a user query. Off-topic queries are refused after a
// single relevance probe; on-topic queries the research cannot answer
// fall back to a web search when one is configured. Every answer that is
// not an Error string is recorded in the history, refusals included.
func (s *Session) Respond(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Please ask a question."
	}
	if s.content == "" {
		return "I need research content to be loaded before I can answer questions. Please generate a research report first."
	}

	if !s.isRelevant(ctx, query) {
		refusal := fmt.Sprintf("I can only answer questions related to the research topic %q. Please ask something about the report.", s.topic)
		s.record(query, refusal)
		return refusal
	}

	answer := s.answerFromResearch(ctx, query)
	if engine.IsErrorText(answer) {
		return answer
	}

	if s.searcher != nil && s.scraper != nil && needsWebFallback(answer) {
		if webAnswer := s.answerFromWeb(ctx, query); webAnswer != "" && !engine.IsErrorText(webAnswer) {
			answer = externalSourcesNote + webAnswer
		}
	}

	s.record(query, answer)
	return answer
}

// isRelevant asks the model whether the query belongs to the research
// topic. Only an unambiguous YES passes the gate.
func (s *Session) isRelevant(ctx context.Context, query string) bool {
	text, err := s.prompts.Format(prompt.RelevanceCheck, map[string]string{
		"research_topic": s.topic,
		"user_query":     query,
	})
	if err != nil {
		slog.Warn("relevance prompt unavailable, allowing query", "error", err)
		return true
	}
	verdict := s.eng.Invoke(ctx, s.modelID, text, "relevance check")
	if engine.IsErrorText(verdict) {
		// The gate failing is not the user's fault. Let the query through.
		slog.Warn("relevance check failed, allowing query", "response", verdict)
		return true
	}
	return strings.EqualFold(strings.TrimSpace(verdict), "YES")
}

func (s *Session) answerFromResearch(ctx context.Context, query string) string {
	content := tailClip(s.content, contentLimit)
	text, err := s.prompts.Format(prompt.ChatResponse, map[string]string{
		"research_content": content,
		"user_query":       query,
	})
	if err != nil {
		return fmt.Sprintf("Error generating chat response: %v", err)
	}
	return s.eng.Invoke(ctx, s.modelID, text, "chat response")
}

// answerFromWeb searches the web for the query, scrapes the results and
// asks the model to answer from the scraped text. Tables found on the
// scraped pages are summarized and folded into the context. Returns ""
// when nothing usable came back.
func (s *Session) answerFromWeb(ctx context.Context, query string) string {
	results, err := s.searcher.Search(ctx, query, 5)
	if err != nil || len(results) == 0 {
		slog.Warn("web fallback search failed", "query", query, "error", err)
		return ""
	}
	pages := websearch.ScrapeAll(ctx, s.scraper, results)
	if len(pages) == 0 {
		return ""
	}

	scraped := headClip(websearch.JoinPages(pages), contentLimit)
	if summary := s.summarizeTables(ctx, pages); summary != "" {
		scraped += "\n\n" + summary
	}

	text, err := s.prompts.Format(prompt.WebSearchResponse, map[string]string{
		"scraped_content": scraped,
		"user_query":      query,
	})
	if err != nil {
		return ""
	}
	return s.eng.Invoke(ctx, s.modelID, text, "web search response")
}

// summarizeTables condenses the first table found on the scraped pages.
// One table is enough context; summarizing every table would spend a
// provider call per table for marginal gain.
func (s *Session) summarizeTables(ctx context.Context, pages []*websearch.Page) string {
	for _, page := range pages {
		for _, table := range page.Tables {
			summary := report.SummarizeTable(ctx, s.eng, s.prompts, s.modelID, table)
			if engine.IsErrorText(summary) {
				return ""
			}
			return "Table summary: " + summary
		}
	}
	return ""
}

// tailClip keeps at most limit trailing bytes of s without splitting a
// multi-byte rune at the cut.
func tailClip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := len(s) - limit
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

// headClip keeps at most limit leading bytes of s without splitting a
// multi-byte rune at the cut.
func headClip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (s *Session) record(query, answer string) {
	s.history = append(s.history,
		Turn{Role: "user", Text: query},
		Turn{Role: "assistant", Text: answer},
	)
}

// insufficientMarkers are phrases a model uses when the research content
// did not contain the answer.
var insufficientMarkers = []string{
	"not available in the research",
	"don't have enough information",
	"do not have enough information",
	"not in the provided research",
}

func needsWebFallback(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range insufficientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
